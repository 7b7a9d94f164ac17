package domain

import "time"

// LeadChangeType captures what changed in an activity entry.
type LeadChangeType string

const (
	ChangeTypeCreated  LeadChangeType = "CREATED"
	ChangeTypeStatus   LeadChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee LeadChangeType = "ASSIGNEE_CHANGE"
	ChangeTypeNotes    LeadChangeType = "NOTES_CHANGE"
	ChangeTypeAdmitted LeadChangeType = "ADMITTED"
)

// LeadActivity is an immutable audit trail entry for a lead.
type LeadActivity struct {
	ID          string
	LeadID      string
	ChangedByID string
	ChangeType  LeadChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
