package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func TestCourseService_CreateAndUpdate(t *testing.T) {
	o := newOffice(t)
	svc := NewCourseService(repository.NewMemoryCourseRepository())
	ctx := context.Background()

	course, err := svc.Create(ctx, o.manager, CourseInput{
		Name:     ptr("Fellowship in Emergency Medicine"),
		Category: ptr(domain.CourseCategoryFellowship),
		Price:    ptr(decimal.RequireFromString("125000.50")),
		Duration: ptr("12 months"),
	})
	require.NoError(t, err)
	require.True(t, course.IsActive)
	require.Equal(t, "125000.5", course.Price.String())

	updated, err := svc.Update(ctx, o.senior, course.ID, CourseInput{IsActive: ptr(false)})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.Equal(t, "Fellowship in Emergency Medicine", updated.Name)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCourseService_Rules(t *testing.T) {
	o := newOffice(t)
	svc := NewCourseService(repository.NewMemoryCourseRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, o.leader, CourseInput{Name: ptr("X"), Category: ptr(domain.CourseCategoryPGDiploma)})
	requireCode(t, err, "FORBIDDEN")

	_, err = svc.Create(ctx, o.manager, CourseInput{Name: ptr("X"), Category: ptr(domain.CourseCategory("MBA"))})
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Create(ctx, o.manager, CourseInput{Name: ptr("X")})
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Create(ctx, o.manager, CourseInput{Name: ptr("X"), Category: ptr(domain.CourseCategoryCertification), Price: ptr(decimal.NewFromInt(-1))})
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Update(ctx, o.manager, "missing", CourseInput{Name: ptr("Y")})
	requireCode(t, err, "NOT_FOUND")
}
