package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/admissions-crm/internal/access"
	"github.com/spec-kit/admissions-crm/internal/auth"
	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/repository"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

const testPassword = "secret1"

// office is a directory of one chain plus a side branch:
//
//	senior -> manager -> floor -> leader -> counselor
//	                  \-> delhi (counselor, Delhi)
type office struct {
	cfg        config.Config
	users      repository.UserRepository
	leads      repository.LeadRepository
	activity   repository.LeadActivityRepository
	resolver   *access.Resolver
	dispatcher events.Dispatcher

	mu        sync.Mutex
	published []events.Event

	senior, manager, floor, leader, counselor, delhi *domain.User
}

func newOffice(t *testing.T) *office {
	t.Helper()
	o := &office{
		cfg: config.Config{
			App:        config.AppConfig{Timezone: "Asia/Kolkata"},
			Auth:       config.AuthConfig{BcryptCost: bcrypt.MinCost, JWTSecret: "test", AccessTokenTTLMinutes: 5},
			Visibility: config.VisibilityConfig{ManagerSeesAll: true},
		},
		users:      repository.NewMemoryUserRepository(),
		leads:      repository.NewMemoryLeadRepository(),
		activity:   repository.NewMemoryLeadActivityRepository(),
		resolver:   access.NewResolver(access.VisibilityConfig{ManagerSeesAll: true}),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	for _, eventType := range []events.EventType{
		events.EventLeadCreated, events.EventLeadStatusChanged, events.EventLeadAssigned,
		events.EventLeadAdmitted, events.EventLeadsImported, events.EventUserCreated,
	} {
		o.dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.published = append(o.published, e)
			return nil
		})
	}

	o.senior = o.addUser(t, "Sanjana", domain.RoleSeniorManager, nil, domain.BranchHyderabad)
	o.manager = o.addUser(t, "Mohan", domain.RoleManager, o.senior, domain.BranchHyderabad)
	o.floor = o.addUser(t, "Farah", domain.RoleFloorManager, o.manager, domain.BranchHyderabad)
	o.leader = o.addUser(t, "Tarun", domain.RoleTeamLeader, o.floor, domain.BranchHyderabad)
	o.counselor = o.addUser(t, "Chitra", domain.RoleCounselor, o.leader, domain.BranchHyderabad)
	o.delhi = o.addUser(t, "Dev", domain.RoleCounselor, o.manager, domain.BranchDelhi)
	return o
}

func (o *office) addUser(t *testing.T, name string, role domain.Role, manager *domain.User, branch domain.Branch) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		Name:         name,
		Email:        name + "@dmhca.edu",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Branch:       branch,
	}
	if manager != nil {
		id := manager.ID
		user.ReportsTo = &id
	}
	require.NoError(t, o.users.Create(context.Background(), user))
	return user
}

func (o *office) addLead(t *testing.T, name, assignee, status string) domain.Lead {
	t.Helper()
	lead := &domain.Lead{FullName: name, AssignedTo: assignee, Status: status}
	require.NoError(t, o.leads.Create(context.Background(), lead))
	return *lead
}

func (o *office) leadService() *LeadService {
	return NewLeadService(o.cfg, LeadDependencies{
		LeadRepo:     o.leads,
		UserRepo:     o.users,
		ActivityRepo: o.activity,
		Resolver:     o.resolver,
		Dispatcher:   o.dispatcher,
	})
}

func (o *office) userService() *UserService {
	return NewUserService(o.cfg, UserDependencies{
		UserRepo:   o.users,
		Resolver:   o.resolver,
		Dispatcher: o.dispatcher,
	})
}

func (o *office) assignmentService() *AssignmentService {
	return NewAssignmentService(AssignmentDependencies{
		LeadRepo:     o.leads,
		UserRepo:     o.users,
		ActivityRepo: o.activity,
		Resolver:     o.resolver,
		Dispatcher:   o.dispatcher,
	})
}

func (o *office) eventTypes() []events.EventType {
	o.mu.Lock()
	defer o.mu.Unlock()
	types := make([]events.EventType, 0, len(o.published))
	for _, e := range o.published {
		types = append(types, e.Type)
	}
	return types
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T", err)
	require.Equal(t, code, domainErr.Code)
}

func names(leads []domain.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, lead := range leads {
		out = append(out, lead.FullName)
	}
	return out
}
