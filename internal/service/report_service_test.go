package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/report"
)

func seedSales(t *testing.T, o *office) {
	t.Helper()
	for _, lead := range []domain.Lead{
		{FullName: "Ananya", AssignedTo: o.counselor.ID, Status: domain.StatusAdmissionDone, CourseInterest: "Fellowship in Diabetology", Source: "Website",
			Sales: &domain.SalesInfo{TotalFees: decimal.NewFromInt(100000), FeesCollected: decimal.NewFromInt(40000), FeesType: domain.FeesTypePart}},
		{FullName: "Dev's admit", AssignedTo: o.delhi.ID, Status: domain.StatusAdmissionDone, Source: "Referral",
			Sales: &domain.SalesInfo{TotalFees: decimal.NewFromInt(80000), FeesCollected: decimal.NewFromInt(80000), FeesType: domain.FeesTypeFull}},
		{FullName: "Bala", AssignedTo: o.counselor.ID, Status: domain.StatusHotLead, Source: "Website"},
	} {
		lead := lead
		require.NoError(t, o.leads.Create(context.Background(), &lead))
	}
}

func TestReportService_SalesIsScoped(t *testing.T) {
	o := newOffice(t)
	seedSales(t, o)
	svc := NewReportService(o.leadService())
	ctx := context.Background()

	sales, err := svc.Sales(ctx, o.leader, report.SalesFilter{})
	require.NoError(t, err)
	require.Len(t, sales.Rows, 1)
	require.Equal(t, "Chitra", sales.Rows[0].CounselorName)
	require.True(t, sales.Summary.Outstanding.Equal(decimal.NewFromInt(60000)))

	sales, err = svc.Sales(ctx, o.senior, report.SalesFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, sales.Summary.Admissions)
	require.True(t, sales.Summary.FeesCollected.Equal(decimal.NewFromInt(120000)))

	sales, err = svc.Sales(ctx, o.senior, report.SalesFilter{Search: "diabet"})
	require.NoError(t, err)
	require.Len(t, sales.Rows, 1)
}

func TestReportService_ExportSales(t *testing.T) {
	o := newOffice(t)
	seedSales(t, o)
	svc := NewReportService(o.leadService())
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.ExportSales(ctx, o.senior, report.SalesFilter{}, ExportCSV, &buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, report.SalesHeaders, records[0])

	buf.Reset()
	require.NoError(t, svc.ExportSales(ctx, o.senior, report.SalesFilter{}, ExportXLSX, &buf))
	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	err = svc.ExportSales(ctx, o.senior, report.SalesFilter{}, ExportFormat("pdf"), &buf)
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestReportService_DashboardAndAnalytics(t *testing.T) {
	o := newOffice(t)
	seedSales(t, o)
	svc := NewReportService(o.leadService())
	ctx := context.Background()

	dashboard, err := svc.Dashboard(ctx, o.leader)
	require.NoError(t, err)
	require.Equal(t, 2, dashboard.TotalLeads)
	require.Equal(t, 1, dashboard.HotLeads)
	require.Equal(t, 1, dashboard.Conversions)
	require.Equal(t, 50, dashboard.ConversionRate)
	require.True(t, dashboard.Revenue.Equal(decimal.NewFromInt(40000)))

	analytics, err := svc.Analytics(ctx, o.senior)
	require.NoError(t, err)
	require.Equal(t, []report.Count{{Label: "Website", Count: 2}, {Label: "Referral", Count: 1}}, analytics.Sources)

	branch, err := svc.Branches(ctx, o.senior, domain.BranchDelhi)
	require.NoError(t, err)
	require.Equal(t, 1, branch.Users)
	require.Equal(t, 1, branch.Conversions)

	_, err = svc.Branches(ctx, o.senior, domain.Branch("Mumbai"))
	requireCode(t, err, "VALIDATION_FAILED")

	recent, err := svc.Recent(ctx, o.senior, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
}
