package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/leadfilter"
	"github.com/spec-kit/admissions-crm/internal/repository"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

const maxFilterNameLength = 64

// SavedFilterService manages per-user filter presets.
type SavedFilterService struct {
	filters repository.SavedFilterRepository
}

// NewSavedFilterService constructs the service.
func NewSavedFilterService(filters repository.SavedFilterRepository) *SavedFilterService {
	return &SavedFilterService{filters: filters}
}

// List returns the actor's presets sorted by name.
func (s *SavedFilterService) List(ctx context.Context, actor *domain.User) ([]repository.SavedFilter, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	filters, err := s.filters.List(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return filters, nil
}

// Save creates or replaces a preset.
func (s *SavedFilterService) Save(ctx context.Context, actor *domain.User, name string, criteria leadfilter.Criteria) (*repository.SavedFilter, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxFilterNameLength {
		return nil, apperrors.NewValidationError("filter name must be 1-64 characters", nil)
	}
	if criteria.IsEmpty() {
		return nil, apperrors.NewValidationError("filter has no criteria", nil)
	}
	filter := repository.SavedFilter{Name: name, Criteria: criteria}
	if err := s.filters.Save(ctx, actor.ID, filter); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return &filter, nil
}

// Delete removes a preset.
func (s *SavedFilterService) Delete(ctx context.Context, actor *domain.User, name string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := s.filters.Delete(ctx, actor.ID, name); err != nil {
		return notFoundOr(err, "saved_filter", name)
	}
	return nil
}

// Resolve loads a preset's criteria.
func (s *SavedFilterService) Resolve(ctx context.Context, actor *domain.User, name string) (leadfilter.Criteria, error) {
	if actor == nil {
		return leadfilter.Criteria{}, apperrors.NewUnauthorized("authentication required")
	}
	filter, err := s.filters.Get(ctx, actor.ID, name)
	if err != nil {
		return leadfilter.Criteria{}, notFoundOr(err, "saved_filter", name)
	}
	return filter.Criteria, nil
}
