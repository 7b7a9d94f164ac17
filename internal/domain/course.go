package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourseCategory groups programmes in the catalog.
type CourseCategory string

const (
	CourseCategoryFellowship    CourseCategory = "Fellowship"
	CourseCategoryPGDiploma     CourseCategory = "PG Diploma"
	CourseCategoryCertification CourseCategory = "Certification"
)

// IsKnownCourseCategory reports whether c is one of the catalog categories.
func IsKnownCourseCategory(c CourseCategory) bool {
	switch c {
	case CourseCategoryFellowship, CourseCategoryPGDiploma, CourseCategoryCertification:
		return true
	}
	return false
}

// Course is a programme offered to prospective students.
type Course struct {
	ID          string
	Name        string
	Category    CourseCategory
	Price       decimal.Decimal
	Duration    string
	Eligibility string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
