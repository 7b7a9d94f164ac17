package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admissions-crm/internal/api/dto"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/leadfilter"
	"github.com/spec-kit/admissions-crm/internal/report"
	"github.com/spec-kit/admissions-crm/internal/service"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandler serves sales, analytics and dashboard reports.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Sales GET /reports/sales.
func (h *ReportsHandler) Sales(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter, err := salesFilter(c)
	if err != nil {
		return err
	}
	sales, err := h.service.Sales(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	rows := make([]dto.SalesRowResponse, 0, len(sales.Rows))
	for _, row := range sales.Rows {
		rows = append(rows, dto.SalesRowResponse{
			LeadID:        row.LeadID,
			Date:          row.Date,
			Name:          row.Name,
			CounselorName: row.CounselorName,
			Phone:         row.Phone,
			Email:         row.Email,
			Country:       row.Country,
			Qualification: row.Qualification,
			Course:        row.Course,
			Fees:          row.Fees,
			FeesType:      string(row.FeesType),
			FeesCollected: row.FeesCollected,
			Note:          row.Note,
		})
	}
	return c.JSON(fiber.Map{"data": dto.SalesReportResponse{
		Rows: rows,
		Summary: dto.SalesSummaryResponse{
			Admissions:    sales.Summary.Admissions,
			TotalFees:     sales.Summary.TotalFees,
			FeesCollected: sales.Summary.FeesCollected,
			Outstanding:   sales.Summary.Outstanding,
		},
	}})
}

// ExportSales GET /reports/sales/export?format=csv|xlsx.
func (h *ReportsHandler) ExportSales(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter, err := salesFilter(c)
	if err != nil {
		return err
	}
	format := service.ExportFormat(c.Query("format", string(service.ExportCSV)))
	var buf bytes.Buffer
	if err := h.service.ExportSales(c.UserContext(), actor, filter, format, &buf); err != nil {
		return err
	}
	c.Attachment(fmt.Sprintf("sales-report-%s.%s", time.Now().UTC().Format(isoDate), format))
	if format == service.ExportXLSX {
		c.Set(fiber.HeaderContentType, xlsxContentType)
	} else {
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	}
	return c.Send(buf.Bytes())
}

// Analytics GET /reports/analytics.
func (h *ReportsHandler) Analytics(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	analytics, err := h.service.Analytics(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AnalyticsResponse{
		Sources:         countResponses(analytics.Sources),
		CourseInterests: countResponses(analytics.CourseInterests),
		Counselors:      performanceResponses(analytics.Counselors),
	}})
}

// Dashboard GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	d, err := h.service.Dashboard(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		TotalLeads:     d.TotalLeads,
		HotLeads:       d.HotLeads,
		Conversions:    d.Conversions,
		ConversionRate: d.ConversionRate,
		Revenue:        d.Revenue,
		ByStatus:       countResponses(d.ByStatus),
	}})
}

// Branches GET /reports/branches?branch=.
func (h *ReportsHandler) Branches(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	analysis, err := h.service.Branches(c.UserContext(), actor, domain.Branch(c.Query("branch")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BranchAnalysisResponse{
		Branch:         analysis.Branch,
		Users:          analysis.Users,
		Leads:          analysis.Leads,
		HotLeads:       analysis.HotLeads,
		Conversions:    analysis.Conversions,
		ConversionRate: analysis.ConversionRate,
		PerUser:        performanceResponses(analysis.PerUser),
	}})
}

// Recent GET /reports/recent?limit=.
func (h *ReportsHandler) Recent(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	leads, err := h.service.Recent(c.UserContext(), actor, parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponses(leads)})
}

// salesFilter reads search and the admission date range (admission_type,
// admission_on, admission_from, admission_to).
func salesFilter(c *fiber.Ctx) (report.SalesFilter, error) {
	filter := report.SalesFilter{
		Search: c.Query("search"),
		AdmissionDate: leadfilter.DateRange{
			Mode: leadfilter.DateMode(c.Query("admission_type")),
			On:   c.Query("admission_on"),
			From: c.Query("admission_from"),
			To:   c.Query("admission_to"),
		},
	}
	if err := checkCriteria(leadfilter.Criteria{Modified: filter.AdmissionDate}); err != nil {
		return report.SalesFilter{}, apperrors.NewValidationError("invalid admission date filter", nil)
	}
	return filter, nil
}

func countResponses(counts []report.Count) []dto.CountResponse {
	out := make([]dto.CountResponse, 0, len(counts))
	for _, count := range counts {
		out = append(out, dto.CountResponse{Label: count.Label, Count: count.Count})
	}
	return out
}

func performanceResponses(items []report.Performance) []dto.PerformanceResponse {
	out := make([]dto.PerformanceResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.PerformanceResponse{
			UserID:         p.UserID,
			Name:           p.Name,
			Leads:          p.Leads,
			HotLeads:       p.HotLeads,
			Conversions:    p.Conversions,
			ConversionRate: p.ConversionRate,
		})
	}
	return out
}
