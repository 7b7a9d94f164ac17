package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/repository"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// CourseService manages the course catalog. Managers and above edit it; everyone reads it.
type CourseService struct {
	courses repository.CourseRepository
}

// NewCourseService constructs the service.
func NewCourseService(courses repository.CourseRepository) *CourseService {
	return &CourseService{courses: courses}
}

// CourseInput carries catalog fields. Nil pointers leave a field unchanged on update.
type CourseInput struct {
	Name        *string
	Category    *domain.CourseCategory
	Price       *decimal.Decimal
	Duration    *string
	Eligibility *string
	Description *string
	IsActive    *bool
}

func requireCatalogEditor(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleSeniorManager && actor.Role != domain.RoleManager {
		return apperrors.NewForbidden("manager role required")
	}
	return nil
}

// List returns the catalog, optionally only active courses.
func (s *CourseService) List(ctx context.Context, activeOnly bool) ([]domain.Course, error) {
	courses, err := s.courses.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return courses, nil
}

// Create adds a course.
func (s *CourseService) Create(ctx context.Context, actor *domain.User, input CourseInput) (*domain.Course, error) {
	if err := requireCatalogEditor(actor); err != nil {
		return nil, err
	}
	course := &domain.Course{IsActive: true}
	if err := applyCourseInput(course, input); err != nil {
		return nil, err
	}
	if course.Name == "" {
		return nil, apperrors.NewValidationError("course name is required", nil)
	}
	if course.Category == "" {
		return nil, apperrors.NewValidationError("course category is required", nil)
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return course, nil
}

// Update edits a course.
func (s *CourseService) Update(ctx context.Context, actor *domain.User, id string, input CourseInput) (*domain.Course, error) {
	if err := requireCatalogEditor(actor); err != nil {
		return nil, err
	}
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "course", id)
	}
	if err := applyCourseInput(course, input); err != nil {
		return nil, err
	}
	if course.Name == "" {
		return nil, apperrors.NewValidationError("course name is required", nil)
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, notFoundOr(err, "course", id)
	}
	return course, nil
}

func applyCourseInput(course *domain.Course, input CourseInput) error {
	if input.Name != nil {
		course.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		if !domain.IsKnownCourseCategory(*input.Category) {
			return apperrors.NewValidationError("unknown course category", map[string]any{"category": *input.Category})
		}
		course.Category = *input.Category
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return apperrors.NewValidationError("price cannot be negative", nil)
		}
		course.Price = *input.Price
	}
	if input.Duration != nil {
		course.Duration = *input.Duration
	}
	if input.Eligibility != nil {
		course.Eligibility = *input.Eligibility
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.IsActive != nil {
		course.IsActive = *input.IsActive
	}
	return nil
}
