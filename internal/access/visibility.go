package access

import "github.com/spec-kit/admissions-crm/internal/domain"

// VisibilityConfig tunes which roles bypass the reporting-line scope.
type VisibilityConfig struct {
	// ManagerSeesAll lets the manager role see every lead, as senior managers do.
	ManagerSeesAll bool
}

// Resolver restricts leads to the ones a viewer may see.
type Resolver struct {
	cfg VisibilityConfig
}

// NewResolver builds a resolver.
func NewResolver(cfg VisibilityConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// SeesAll reports whether role bypasses hierarchy scoping.
func (r *Resolver) SeesAll(role domain.Role) bool {
	switch role {
	case domain.RoleSeniorManager:
		return true
	case domain.RoleManager:
		return r.cfg.ManagerSeesAll
	default:
		return false
	}
}

// Subordinates returns the ids of every user reachable below viewerID through
// reportsTo links. The viewer itself is never included.
func Subordinates(viewerID string, users []domain.User) map[string]struct{} {
	children := make(map[string][]string, len(users))
	for _, user := range users {
		if parent := user.ManagerID(); parent != "" {
			children[parent] = append(children[parent], user.ID)
		}
	}

	visited := map[string]struct{}{viewerID: {}}
	result := make(map[string]struct{})
	queue := append([]string(nil), children[viewerID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		result[id] = struct{}{}
		queue = append(queue, children[id]...)
	}
	return result
}

// Scope returns the assignee ids the viewer may see. all is true when the
// viewer sees every lead, in which case ids is nil.
func (r *Resolver) Scope(viewer domain.User, users []domain.User) (ids map[string]struct{}, all bool) {
	if r.SeesAll(viewer.Role) {
		return nil, true
	}
	ids = Subordinates(viewer.ID, users)
	ids[viewer.ID] = struct{}{}
	return ids, false
}

// Resolve returns the leads visible to viewer in their original order.
func (r *Resolver) Resolve(viewer domain.User, users []domain.User, leads []domain.Lead) []domain.Lead {
	ids, all := r.Scope(viewer, users)
	if all {
		return append([]domain.Lead(nil), leads...)
	}
	visible := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if _, ok := ids[lead.AssignedTo]; ok {
			visible = append(visible, lead)
		}
	}
	return visible
}

// CanSee reports whether a single lead is within viewer's scope.
func (r *Resolver) CanSee(viewer domain.User, users []domain.User, lead domain.Lead) bool {
	ids, all := r.Scope(viewer, users)
	if all {
		return true
	}
	_, ok := ids[lead.AssignedTo]
	return ok
}

// CanManage reports whether viewer may act on target: themselves or a
// transitive subordinate, or anyone when viewer sees all.
func (r *Resolver) CanManage(viewer domain.User, users []domain.User, targetID string) bool {
	ids, all := r.Scope(viewer, users)
	if all {
		return true
	}
	_, ok := ids[targetID]
	return ok
}

// VisibleUsers returns users at or below viewer's role, optionally limited to one branch.
func VisibleUsers(viewer domain.User, users []domain.User, branch domain.Branch) []domain.User {
	rank := Rank(viewer.Role)
	result := make([]domain.User, 0)
	if rank < 0 {
		return result
	}
	for _, user := range users {
		if Rank(user.Role) < rank {
			continue
		}
		if branch != "" && user.Branch != branch {
			continue
		}
		result = append(result, user)
	}
	return result
}
