package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/leadfilter"
)

// SalesHeaders is the column list of the sales report.
var SalesHeaders = []string{
	"Date", "Name", "Counselor Name", "Phone", "Email", "Country",
	"Qualification", "Course", "Fees", "Fees Type", "Fees Collected", "Note",
}

// SalesSearchFields extends the lead search with qualification.
var SalesSearchFields = []leadfilter.Field{
	leadfilter.FieldFullName,
	leadfilter.FieldEmail,
	leadfilter.FieldPhone,
	leadfilter.FieldCountry,
	leadfilter.FieldQualification,
	leadfilter.FieldCourseInterest,
	leadfilter.FieldStatus,
}

// SalesRow is one admission in the sales report.
type SalesRow struct {
	LeadID        string
	Date          time.Time
	Name          string
	CounselorName string
	Phone         string
	Email         string
	Country       string
	Qualification string
	Course        string
	Fees          decimal.Decimal
	FeesType      domain.FeesType
	FeesCollected decimal.Decimal
	Note          string
}

// SalesSummary totals a sales report.
type SalesSummary struct {
	Admissions    int
	TotalFees     decimal.Decimal
	FeesCollected decimal.Decimal
	Outstanding   decimal.Decimal
}

// SalesFilter narrows admissions by free text and admission date (the lead's updatedAt).
type SalesFilter struct {
	Search        string
	AdmissionDate leadfilter.DateRange
}

// SalesRows selects admissions from leads, applies the filter and renders rows.
func SalesRows(leads []domain.Lead, users []domain.User, filter SalesFilter) []SalesRow {
	admissions := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.IsAdmission() {
			admissions = append(admissions, lead)
		}
	}
	admissions = leadfilter.Apply(admissions, leadfilter.Criteria{
		Search:       filter.Search,
		SearchFields: SalesSearchFields,
		Modified:     filter.AdmissionDate,
	})

	byID := UsersByID(users)
	rows := make([]SalesRow, 0, len(admissions))
	for _, lead := range admissions {
		row := SalesRow{
			LeadID:        lead.ID,
			Date:          lead.UpdatedAt,
			Name:          lead.FullName,
			CounselorName: AssigneeName(lead.AssignedTo, byID),
			Phone:         lead.Phone,
			Email:         lead.Email,
			Country:       lead.Country,
			Qualification: lead.Qualification,
			Course:        lead.CourseInterest,
		}
		if lead.Sales != nil {
			row.Fees = lead.Sales.TotalFees
			if !lead.Sales.Fees.IsZero() {
				row.Fees = lead.Sales.Fees
			}
			row.FeesType = lead.Sales.FeesType
			row.FeesCollected = lead.Sales.FeesCollected
			row.Note = lead.Sales.Note
		}
		rows = append(rows, row)
	}
	return rows
}

// Summarize totals the rows.
func Summarize(rows []SalesRow) SalesSummary {
	summary := SalesSummary{Admissions: len(rows)}
	for _, row := range rows {
		summary.TotalFees = summary.TotalFees.Add(row.Fees)
		summary.FeesCollected = summary.FeesCollected.Add(row.FeesCollected)
	}
	summary.Outstanding = summary.TotalFees.Sub(summary.FeesCollected)
	return summary
}

func (r SalesRow) record() []string {
	return []string{
		formatTimestamp(r.Date),
		r.Name,
		r.CounselorName,
		r.Phone,
		r.Email,
		r.Country,
		r.Qualification,
		r.Course,
		formatAmount(r.Fees),
		string(r.FeesType),
		formatAmount(r.FeesCollected),
		r.Note,
	}
}

func formatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

// WriteSalesCSV writes rows in SalesHeaders order.
func WriteSalesCSV(w io.Writer, rows []SalesRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(SalesHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

const salesSheet = "Sales"

// WriteSalesXLSX writes rows as a single-sheet workbook. Amount cells are numeric.
func WriteSalesXLSX(w io.Writer, rows []SalesRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(SalesHeaders))
	for i, h := range SalesHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(salesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			formatTimestamp(row.Date),
			row.Name,
			row.CounselorName,
			row.Phone,
			row.Email,
			row.Country,
			row.Qualification,
			row.Course,
			row.Fees.InexactFloat64(),
			string(row.FeesType),
			row.FeesCollected.InexactFloat64(),
			row.Note,
		}
		if err := f.SetSheetRow(salesSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
