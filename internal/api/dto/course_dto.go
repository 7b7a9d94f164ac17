package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourseRequest payload for catalog writes. Omitted fields are left unchanged on update.
type CourseRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category    *string          `json:"category" validate:"omitempty,oneof=Fellowship 'PG Diploma' Certification"`
	Price       *decimal.Decimal `json:"price"`
	Duration    *string          `json:"duration" validate:"omitempty,max=80"`
	Eligibility *string          `json:"eligibility" validate:"omitempty,max=500"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"is_active"`
}

// CourseResponse is the public view of a course.
type CourseResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Duration    string          `json:"duration,omitempty"`
	Eligibility string          `json:"eligibility,omitempty"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
