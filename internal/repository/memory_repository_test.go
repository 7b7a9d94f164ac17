package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/leadfilter"
	"github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	manager := &domain.User{Name: "Meera", Email: "Meera@Example.com", Role: domain.RoleManager, IsActive: true, Branch: domain.BranchDelhi}
	require.NoError(t, repo.Create(ctx, manager))
	require.NotEmpty(t, manager.ID)

	managerID := manager.ID
	counselor := &domain.User{Name: "Kabir", Email: "kabir@example.com", Role: domain.RoleCounselor, ReportsTo: &managerID, IsActive: true}
	require.NoError(t, repo.Create(ctx, counselor))

	dup := &domain.User{Name: "Other", Email: "meera@example.com"}
	err := repo.Create(ctx, dup)
	require.Equal(t, "CONFLICT", errorutil.ToDomainError(err).Code)

	found, err := repo.GetByEmail(ctx, "MEERA@example.com")
	require.NoError(t, err)
	require.Equal(t, manager.ID, found.ID)

	got, err := repo.GetByID(ctx, counselor.ID)
	require.NoError(t, err)
	*got.ReportsTo = "tampered"
	again, err := repo.GetByID(ctx, counselor.ID)
	require.NoError(t, err)
	require.Equal(t, managerID, *again.ReportsTo)

	role := domain.RoleCounselor
	counselors, err := repo.List(ctx, UserFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, counselors, 1)

	branch := domain.BranchDelhi
	delhi, err := repo.List(ctx, UserFilter{Branch: &branch})
	require.NoError(t, err)
	require.Len(t, delhi, 1)

	_, err = repo.GetByID(ctx, "missing")
	require.True(t, errorutil.IsNotFound(err))
	require.True(t, errorutil.IsNotFound(repo.Update(ctx, &domain.User{ID: "missing"})))
}

func TestMemoryLeadRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLeadRepository()

	first := &domain.Lead{FullName: "Ananya", AssignedTo: "c1", Status: domain.StatusHotLead}
	require.NoError(t, repo.Create(ctx, first))
	batch := []domain.Lead{
		{FullName: "Rahul", AssignedTo: "c2", NotesDate: "2024-12-05 10:30"},
		{FullName: "Imran", AssignedTo: "c1", Status: "admission done"},
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	require.NotEmpty(t, batch[0].ID)

	all, err := repo.List(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := repo.List(ctx, LeadFilter{AssignedTo: []string{"c1"}})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	none, err := repo.List(ctx, LeadFilter{AssignedTo: []string{}})
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)

	admissions, err := repo.List(ctx, LeadFilter{AdmissionsOnly: true})
	require.NoError(t, err)
	require.Len(t, admissions, 1)

	followUps, err := repo.List(ctx, LeadFilter{WithFollowUp: true})
	require.NoError(t, err)
	require.Len(t, followUps, 1)

	created := first.CreatedAt
	first.Status = domain.StatusWarm
	require.NoError(t, repo.Update(ctx, first))
	require.Equal(t, created, first.CreatedAt)
	require.False(t, first.UpdatedAt.Before(created))

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	require.True(t, errorutil.IsNotFound(err))
	require.True(t, errorutil.IsNotFound(repo.Delete(ctx, first.ID)))
}

func TestMemoryLeadRepository_EmptyListIsNotNil(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLeadRepository()

	empty, err := repo.List(ctx, LeadFilter{})
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	require.NoError(t, repo.Create(ctx, &domain.Lead{FullName: "Ananya", AssignedTo: "c1"}))
	missing, err := repo.List(ctx, LeadFilter{AssignedTo: []string{"c9"}})
	require.NoError(t, err)
	require.Equal(t, []domain.Lead{}, missing)
}

func TestMemoryCourseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCourseRepository()

	require.NoError(t, repo.Create(ctx, &domain.Course{Name: "Fellowship in Diabetology", Category: domain.CourseCategoryFellowship, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &domain.Course{Name: "Certificate in ECG", Category: domain.CourseCategoryCertification}))
	err := repo.Create(ctx, &domain.Course{Name: "fellowship in diabetology"})
	require.Error(t, err)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestMemorySavedFilterRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySavedFilterRepository()

	statuses := []string{"Hot Lead"}
	require.NoError(t, repo.Save(ctx, "u1", SavedFilter{Name: "hot", Criteria: leadfilter.Criteria{Statuses: statuses}}))
	require.NoError(t, repo.Save(ctx, "u1", SavedFilter{Name: "delhi", Criteria: leadfilter.Criteria{Search: "delhi"}}))
	statuses[0] = "mutated"

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"delhi", "hot"}, []string{list[0].Name, list[1].Name})
	require.Equal(t, []string{"Hot Lead"}, list[1].Criteria.Statuses)

	other, err := repo.List(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, other)

	require.NoError(t, repo.Delete(ctx, "u1", "hot"))
	_, err = repo.Get(ctx, "u1", "hot")
	require.ErrorIs(t, err, errorutil.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "u1", "hot"), errorutil.ErrNotFound)
}
