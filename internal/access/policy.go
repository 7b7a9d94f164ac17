// Package access derives what a member of the admissions staff may see and do
// from the role order and the reportsTo hierarchy.
package access

import (
	"errors"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

var roleOrder = []domain.Role{
	domain.RoleSeniorManager,
	domain.RoleManager,
	domain.RoleFloorManager,
	domain.RoleTeamLeader,
	domain.RoleCounselor,
}

// ErrInvalidManager is returned when a reportsTo target does not outrank the user.
var ErrInvalidManager = errors.New("manager must hold a higher role than the user")

// RoleOrder returns the five roles, highest authority first.
func RoleOrder() []domain.Role {
	return append([]domain.Role(nil), roleOrder...)
}

// Rank returns the position of role in RoleOrder, or -1 for an unknown role.
func Rank(role domain.Role) int {
	for i, candidate := range roleOrder {
		if candidate == role {
			return i
		}
	}
	return -1
}

// IsKnownRole reports whether role is part of the hierarchy.
func IsKnownRole(role domain.Role) bool {
	return Rank(role) >= 0
}

// Outranks reports whether a is strictly higher than b. Unknown roles never outrank.
func Outranks(a, b domain.Role) bool {
	ra, rb := Rank(a), Rank(b)
	if ra < 0 || rb < 0 {
		return false
	}
	return ra < rb
}

// AddableRoles returns the roles a viewer may create accounts for.
func AddableRoles(viewer domain.Role) []domain.Role {
	switch viewer {
	case domain.RoleSeniorManager:
		return RoleOrder()
	case domain.RoleManager:
		return RoleOrder()[1:]
	case domain.RoleFloorManager:
		return RoleOrder()[2:]
	case domain.RoleTeamLeader:
		return []domain.Role{domain.RoleCounselor}
	default:
		return []domain.Role{}
	}
}

// AssignableRoles returns every role strictly below viewer.
func AssignableRoles(viewer domain.Role) []domain.Role {
	rank := Rank(viewer)
	if rank < 0 {
		return []domain.Role{}
	}
	return RoleOrder()[rank+1:]
}

// CanAdd reports whether viewer may create a user with role.
func CanAdd(viewer, role domain.Role) bool {
	return containsRole(AddableRoles(viewer), role)
}

// CanAssignTo reports whether viewer may hand a lead to a user holding role.
func CanAssignTo(viewer, role domain.Role) bool {
	return containsRole(AssignableRoles(viewer), role)
}

// AssignableUsers returns the users whose role is strictly below viewer's.
func AssignableUsers(viewer domain.Role, users []domain.User) []domain.User {
	result := make([]domain.User, 0)
	for _, user := range users {
		if CanAssignTo(viewer, user.Role) {
			result = append(result, user)
		}
	}
	return result
}

// ValidateReportsTo enforces that manager strictly outranks user.
func ValidateReportsTo(user, manager domain.User) error {
	if user.ID != "" && user.ID == manager.ID {
		return ErrInvalidManager
	}
	if !Outranks(manager.Role, user.Role) {
		return ErrInvalidManager
	}
	return nil
}

// ReportingLine returns the managers above user, highest first. Dangling
// references end the line and a cycle stops at the first repeated user.
func ReportingLine(user domain.User, users []domain.User) []domain.User {
	byID := indexUsers(users)
	seen := map[string]struct{}{user.ID: {}}
	line := []domain.User{}
	current := user
	for current.ManagerID() != "" {
		manager, ok := byID[current.ManagerID()]
		if !ok {
			break
		}
		if _, dup := seen[manager.ID]; dup {
			break
		}
		seen[manager.ID] = struct{}{}
		line = append([]domain.User{manager}, line...)
		current = manager
	}
	return line
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

func indexUsers(users []domain.User) map[string]domain.User {
	byID := make(map[string]domain.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID
}
