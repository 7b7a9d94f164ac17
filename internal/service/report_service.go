package service

import (
	"context"
	"io"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/report"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// ExportFormat selects the sales export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

const defaultRecentLimit = 10

// ReportService computes reports over the actor's visible leads.
type ReportService struct {
	leads *LeadService
}

// NewReportService constructs the service.
func NewReportService(leads *LeadService) *ReportService {
	return &ReportService{leads: leads}
}

// SalesReport is the admissions table with totals.
type SalesReport struct {
	Rows    []report.SalesRow
	Summary report.SalesSummary
}

// Sales lists visible admissions matching filter.
func (s *ReportService) Sales(ctx context.Context, actor *domain.User, filter report.SalesFilter) (SalesReport, error) {
	leads, users, err := s.leads.Visible(ctx, actor)
	if err != nil {
		return SalesReport{}, err
	}
	rows := report.SalesRows(leads, users, filter)
	return SalesReport{Rows: rows, Summary: report.Summarize(rows)}, nil
}

// ExportSales writes the sales report in the requested format.
func (s *ReportService) ExportSales(ctx context.Context, actor *domain.User, filter report.SalesFilter, format ExportFormat, w io.Writer) error {
	sales, err := s.Sales(ctx, actor, filter)
	if err != nil {
		return err
	}
	switch format {
	case ExportCSV, "":
		err = report.WriteSalesCSV(w, sales.Rows)
	case ExportXLSX:
		err = report.WriteSalesXLSX(w, sales.Rows)
	default:
		return apperrors.NewValidationError("unsupported export format", map[string]any{"format": format})
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Analytics aggregates visible leads by source, course interest and counselor.
func (s *ReportService) Analytics(ctx context.Context, actor *domain.User) (report.Analytics, error) {
	leads, users, err := s.leads.Visible(ctx, actor)
	if err != nil {
		return report.Analytics{}, err
	}
	return report.BuildAnalytics(leads, users), nil
}

// Dashboard totals the visible leads.
func (s *ReportService) Dashboard(ctx context.Context, actor *domain.User) (report.Dashboard, error) {
	leads, _, err := s.leads.Visible(ctx, actor)
	if err != nil {
		return report.Dashboard{}, err
	}
	return report.BuildDashboard(leads), nil
}

// Branches aggregates visible leads per user at or below the actor's role.
func (s *ReportService) Branches(ctx context.Context, actor *domain.User, branch domain.Branch) (report.BranchAnalysis, error) {
	if branch != "" && !domain.IsKnownBranch(branch) {
		return report.BranchAnalysis{}, apperrors.NewValidationError("unknown branch", map[string]any{"branch": branch})
	}
	leads, users, err := s.leads.Visible(ctx, actor)
	if err != nil {
		return report.BranchAnalysis{}, err
	}
	return report.BuildBranchAnalysis(*actor, users, leads, branch), nil
}

// Recent returns the most recently touched visible leads.
func (s *ReportService) Recent(ctx context.Context, actor *domain.User, limit int) ([]domain.Lead, error) {
	leads, _, err := s.leads.Visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return report.RecentLeads(leads, limit), nil
}
