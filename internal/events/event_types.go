package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeadCreated       EventType = "lead_created"
	EventLeadStatusChanged EventType = "lead_status_changed"
	EventLeadAssigned      EventType = "lead_assigned"
	EventLeadAdmitted      EventType = "lead_admitted"
	EventLeadsImported     EventType = "leads_imported"
	EventLeadFollowUpDue   EventType = "lead_followup_due"
	EventUserCreated       EventType = "user_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	LeadID    string      `json:"lead_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an ID and the current time.
func New(eventType EventType, leadID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		LeadID:    leadID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// LeadCreatedPayload payload.
type LeadCreatedPayload struct {
	FullName   string `json:"full_name"`
	Source     string `json:"source"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// LeadStatusChangedPayload payload.
type LeadStatusChangedPayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// LeadAssignedPayload payload.
type LeadAssignedPayload struct {
	OldAssignee string `json:"old_assignee,omitempty"`
	NewAssignee string `json:"new_assignee"`
}

// LeadAdmittedPayload payload.
type LeadAdmittedPayload struct {
	Course        string `json:"course"`
	TotalFees     string `json:"total_fees"`
	FeesCollected string `json:"fees_collected"`
}

// LeadsImportedPayload payload.
type LeadsImportedPayload struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// LeadFollowUpDuePayload payload.
type LeadFollowUpDuePayload struct {
	FullName   string    `json:"full_name"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	Notes      string    `json:"notes"`
	DueAt      time.Time `json:"due_at"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	ReportsTo string `json:"reports_to,omitempty"`
}
