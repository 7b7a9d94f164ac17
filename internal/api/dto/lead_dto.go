package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/admissions-crm/internal/report"
)

// SalesInfoRequest carries the fee record of an admission.
type SalesInfoRequest struct {
	Fees          decimal.Decimal `json:"fees"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	FeesCollected decimal.Decimal `json:"fees_collected"`
	FeesType      string          `json:"fees_type" validate:"omitempty,oneof='Full Payment' 'Part Payment' Loan"`
	Note          string          `json:"note" validate:"omitempty,max=500"`
}

// CreateLeadRequest payload for lead intake.
type CreateLeadRequest struct {
	FullName          string            `json:"full_name" validate:"required,max=200"`
	Email             string            `json:"email" validate:"omitempty,email"`
	Phone             string            `json:"phone" validate:"omitempty,max=32"`
	Country           string            `json:"country" validate:"omitempty,max=80"`
	Qualification     string            `json:"qualification" validate:"omitempty,max=120"`
	Source            string            `json:"source" validate:"omitempty,max=80"`
	Status            string            `json:"status" validate:"omitempty,max=80"`
	AssignedTo        string            `json:"assigned_to"`
	CourseInterest    string            `json:"course_interest" validate:"omitempty,max=200"`
	Priority          string            `json:"priority" validate:"omitempty,max=32"`
	Location          string            `json:"location" validate:"omitempty,max=120"`
	Notes             string            `json:"notes"`
	NotesDate         string            `json:"notes_date" validate:"omitempty,datetime=2006-01-02 15:04"`
	WhatsAppNumber    string            `json:"whatsapp_number" validate:"omitempty,max=32"`
	PreferredLanguage string            `json:"preferred_language" validate:"omitempty,max=32"`
	Sales             *SalesInfoRequest `json:"sales"`
}

// UpdateLeadRequest payload. Omitted fields are left unchanged.
type UpdateLeadRequest struct {
	FullName          *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Email             *string `json:"email" validate:"omitempty,email"`
	Phone             *string `json:"phone" validate:"omitempty,max=32"`
	Country           *string `json:"country" validate:"omitempty,max=80"`
	Qualification     *string `json:"qualification" validate:"omitempty,max=120"`
	Source            *string `json:"source" validate:"omitempty,max=80"`
	CourseInterest    *string `json:"course_interest" validate:"omitempty,max=200"`
	Priority          *string `json:"priority" validate:"omitempty,max=32"`
	Location          *string `json:"location" validate:"omitempty,max=120"`
	Notes             *string `json:"notes"`
	NotesDate         *string `json:"notes_date"`
	WhatsAppNumber    *string `json:"whatsapp_number" validate:"omitempty,max=32"`
	PreferredLanguage *string `json:"preferred_language" validate:"omitempty,max=32"`
}

// StatusChangeRequest moves a lead to a new status.
type StatusChangeRequest struct {
	Status string            `json:"status" validate:"required,max=80"`
	Sales  *SalesInfoRequest `json:"sales"`
}

// MoveCardRequest is a kanban drop onto a column.
type MoveCardRequest struct {
	Column string            `json:"column" validate:"required"`
	Sales  *SalesInfoRequest `json:"sales"`
}

// AssignLeadRequest hands a lead to a user.
type AssignLeadRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required"`
}

// DistributeLeadsRequest spreads leads across counselors.
type DistributeLeadsRequest struct {
	LeadIDs []string `json:"lead_ids" validate:"required,min=1,max=500,dive,required"`
}

// SalesInfoResponse is the fee record of an admission.
type SalesInfoResponse struct {
	Fees          decimal.Decimal `json:"fees"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	FeesCollected decimal.Decimal `json:"fees_collected"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	FeesType      string          `json:"fees_type,omitempty"`
	Note          string          `json:"note,omitempty"`
}

// LeadResponse is the public view of a lead.
type LeadResponse struct {
	ID                string             `json:"id"`
	FullName          string             `json:"full_name"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	Country           string             `json:"country"`
	Qualification     string             `json:"qualification"`
	Source            string             `json:"source"`
	Status            string             `json:"status"`
	AssignedTo        string             `json:"assigned_to"`
	CourseInterest    string             `json:"course_interest"`
	Priority          string             `json:"priority,omitempty"`
	Location          string             `json:"location,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	NotesDate         string             `json:"notes_date,omitempty"`
	WhatsAppNumber    string             `json:"whatsapp_number,omitempty"`
	PreferredLanguage string             `json:"preferred_language,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Sales             *SalesInfoResponse `json:"sales,omitempty"`
}

// LeadActivityResponse is one change log entry.
type LeadActivityResponse struct {
	ID          string         `json:"id"`
	ChangeType  string         `json:"change_type"`
	ChangedByID string         `json:"changed_by_id"`
	OldValue    map[string]any `json:"old_value,omitempty"`
	NewValue    map[string]any `json:"new_value,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// KanbanColumnResponse is one board lane.
type KanbanColumnResponse struct {
	Status string         `json:"status"`
	Count  int            `json:"count"`
	Leads  []LeadResponse `json:"leads"`
}

// KanbanResponse is the board view.
type KanbanResponse struct {
	Columns  []KanbanColumnResponse `json:"columns"`
	Unplaced int                    `json:"unplaced"`
}

// ImportResponse summarizes a CSV import.
type ImportResponse struct {
	Imported int               `json:"imported"`
	Skipped  []report.RowError `json:"skipped"`
}
