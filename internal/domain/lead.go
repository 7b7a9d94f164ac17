package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// FeesType describes how an admitted student pays.
type FeesType string

const (
	FeesTypeFull FeesType = "Full Payment"
	FeesTypePart FeesType = "Part Payment"
	FeesTypeLoan FeesType = "Loan"
)

// NotesDateLayout is the follow-up timestamp format stored on leads.
const NotesDateLayout = "2006-01-02 15:04"

// ErrSalesInfoIncomplete is returned when an admission lacks fee details.
var ErrSalesInfoIncomplete = errors.New("total fees and fees collected are required for admission")

// SalesInfo holds the fee record attached to a lead once it becomes an admission.
type SalesInfo struct {
	Fees          decimal.Decimal
	TotalFees     decimal.Decimal
	FeesCollected decimal.Decimal
	FeesType      FeesType
	Note          string
}

// Validate checks the fields required to record a sale.
func (s SalesInfo) Validate() error {
	if !s.TotalFees.IsPositive() || !s.FeesCollected.IsPositive() {
		return ErrSalesInfoIncomplete
	}
	if s.FeesCollected.GreaterThan(s.TotalFees) {
		return errors.New("fees collected exceeds total fees")
	}
	return nil
}

// Outstanding returns the unpaid balance.
func (s SalesInfo) Outstanding() decimal.Decimal {
	return s.TotalFees.Sub(s.FeesCollected)
}

// Lead is a prospective student tracked through the admissions pipeline.
type Lead struct {
	ID                string
	FullName          string
	Email             string
	Phone             string
	Country           string
	Qualification     string
	Source            string
	Status            string
	AssignedTo        string
	CourseInterest    string
	Priority          string
	Location          string
	Notes             string
	NotesDate         string
	WhatsAppNumber    string
	PreferredLanguage string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Sales             *SalesInfo
}

// IsAdmission reports whether the lead is in the admission state.
func (l Lead) IsAdmission() bool {
	return IsAdmissionStatus(l.Status)
}

// Admit moves the lead into the admission state with the given fee record.
func (l *Lead) Admit(info SalesInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	l.Status = StatusAdmissionDone
	l.Sales = &info
	return nil
}

// SetStatus moves the lead to a non-admission status. Leaving the admission
// state drops the fee record, so a later admission needs fresh fee details.
func (l *Lead) SetStatus(status string) {
	if l.IsAdmission() && !IsAdmissionStatus(status) {
		l.Sales = nil
	}
	l.Status = status
}
