package dto

import "github.com/spec-kit/admissions-crm/internal/leadfilter"

// SaveFilterRequest stores a named preset.
type SaveFilterRequest struct {
	Criteria leadfilter.Criteria `json:"criteria"`
}

// SavedFilterResponse is a stored preset.
type SavedFilterResponse struct {
	Name     string              `json:"name"`
	Criteria leadfilter.Criteria `json:"criteria"`
}
