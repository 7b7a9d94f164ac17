package access

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

func TestRoleOrder_IsStableCopy(t *testing.T) {
	order := RoleOrder()
	require.Equal(t, []domain.Role{
		domain.RoleSeniorManager,
		domain.RoleManager,
		domain.RoleFloorManager,
		domain.RoleTeamLeader,
		domain.RoleCounselor,
	}, order)

	order[0] = domain.RoleCounselor
	require.Equal(t, domain.RoleSeniorManager, RoleOrder()[0])
}

func TestAddableRoles(t *testing.T) {
	require.Equal(t, RoleOrder(), AddableRoles(domain.RoleSeniorManager))
	require.Equal(t, RoleOrder()[1:], AddableRoles(domain.RoleManager))
	require.Equal(t, RoleOrder()[2:], AddableRoles(domain.RoleFloorManager))
	require.Equal(t, []domain.Role{domain.RoleCounselor}, AddableRoles(domain.RoleTeamLeader))
	require.Empty(t, AddableRoles(domain.RoleCounselor))
	require.Empty(t, AddableRoles(domain.Role("intern")))
}

func TestAssignableRoles_StrictlyBelow(t *testing.T) {
	require.Equal(t, RoleOrder()[1:], AssignableRoles(domain.RoleSeniorManager))
	require.Equal(t, RoleOrder()[3:], AssignableRoles(domain.RoleFloorManager))
	require.Empty(t, AssignableRoles(domain.RoleCounselor))
	require.Empty(t, AssignableRoles(domain.Role("")))

	// Senior managers may add their own role but never assign to it.
	require.True(t, CanAdd(domain.RoleSeniorManager, domain.RoleSeniorManager))
	require.False(t, CanAssignTo(domain.RoleSeniorManager, domain.RoleSeniorManager))
}

func TestAssignableUsers(t *testing.T) {
	users := []domain.User{
		{ID: "s1", Role: domain.RoleSeniorManager},
		{ID: "t1", Role: domain.RoleTeamLeader},
		{ID: "c1", Role: domain.RoleCounselor},
		{ID: "x1", Role: domain.Role("ghost")},
	}
	got := AssignableUsers(domain.RoleTeamLeader, users)
	require.Len(t, got, 1)
	require.Equal(t, "c1", got[0].ID)
}

func TestValidateReportsTo(t *testing.T) {
	counselor := domain.User{ID: "c1", Role: domain.RoleCounselor}
	require.NoError(t, ValidateReportsTo(counselor, domain.User{ID: "t1", Role: domain.RoleTeamLeader}))
	require.ErrorIs(t, ValidateReportsTo(counselor, domain.User{ID: "c2", Role: domain.RoleCounselor}), ErrInvalidManager)
	require.ErrorIs(t, ValidateReportsTo(domain.User{ID: "m1", Role: domain.RoleManager}, domain.User{ID: "m1", Role: domain.RoleSeniorManager}), ErrInvalidManager)
}

func TestReportingLine(t *testing.T) {
	s1, m1, t1 := "s1", "m1", "t1"
	users := []domain.User{
		{ID: "s1", Role: domain.RoleSeniorManager},
		{ID: "m1", Role: domain.RoleManager, ReportsTo: &s1},
		{ID: "t1", Role: domain.RoleTeamLeader, ReportsTo: &m1},
		{ID: "c1", Role: domain.RoleCounselor, ReportsTo: &t1},
	}
	line := ReportingLine(users[3], users)
	ids := make([]string, 0, len(line))
	for _, u := range line {
		ids = append(ids, u.ID)
	}
	require.Equal(t, []string{"s1", "m1", "t1"}, ids)
}

func TestReportingLine_StopsOnCycleAndDanglingManager(t *testing.T) {
	a, b, missing := "a", "b", "missing"
	users := []domain.User{
		{ID: "a", Role: domain.RoleTeamLeader, ReportsTo: &b},
		{ID: "b", Role: domain.RoleFloorManager, ReportsTo: &a},
		{ID: "c", Role: domain.RoleCounselor, ReportsTo: &missing},
	}
	require.Len(t, ReportingLine(users[0], users), 1)
	require.Empty(t, ReportingLine(users[2], users))
}
