package domain

import "time"

// Role enumerates positions in the admissions office hierarchy.
type Role string

const (
	RoleSeniorManager Role = "senior_manager"
	RoleManager       Role = "manager"
	RoleFloorManager  Role = "floor_manager"
	RoleTeamLeader    Role = "team_leader"
	RoleCounselor     Role = "counselor"
)

// Label returns the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleSeniorManager:
		return "Senior Manager"
	case RoleManager:
		return "Manager"
	case RoleFloorManager:
		return "Floor Manager"
	case RoleTeamLeader:
		return "Team Leader"
	case RoleCounselor:
		return "Counselor"
	default:
		return string(r)
	}
}

// Branch is one of the office locations a user works from.
type Branch string

const (
	BranchHyderabad Branch = "Hyderabad"
	BranchDelhi     Branch = "Delhi"
	BranchKashmir   Branch = "Kashmir"
)

// Branches lists the known office locations.
func Branches() []Branch {
	return []Branch{BranchHyderabad, BranchDelhi, BranchKashmir}
}

// IsKnownBranch reports whether b is one of the office locations.
func IsKnownBranch(b Branch) bool {
	for _, candidate := range Branches() {
		if candidate == b {
			return true
		}
	}
	return false
}

// User is a member of the admissions staff.
type User struct {
	ID                string
	Name              string
	Email             string
	Phone             string
	PasswordHash      string
	Role              Role
	ReportsTo         *string
	Department        string
	IsActive          bool
	Branch            Branch
	PreferredLanguage string
	WhatsAppNumber    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ManagerID returns the id the user reports to, or "" for a root.
func (u User) ManagerID() string {
	if u.ReportsTo == nil {
		return ""
	}
	return *u.ReportsTo
}
