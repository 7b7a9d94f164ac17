package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/admissions-crm/internal/access"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/repository"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// AssignmentService handles lead assignment operations.
type AssignmentService struct {
	leads        repository.LeadRepository
	users        repository.UserRepository
	activityRepo repository.LeadActivityRepository
	resolver     *access.Resolver
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	LeadRepo     repository.LeadRepository
	UserRepo     repository.UserRepository
	ActivityRepo repository.LeadActivityRepository
	Resolver     *access.Resolver
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		leads:        deps.LeadRepo,
		users:        deps.UserRepo,
		activityRepo: deps.ActivityRepo,
		resolver:     deps.Resolver,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
	}
}

// SelfAssignLead moves a visible lead to the actor.
func (s *AssignmentService) SelfAssignLead(ctx context.Context, actor *domain.User, leadID string) (*domain.Lead, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return s.AssignLead(ctx, actor, leadID, actor.ID)
}

// AssignLead hands a visible lead to assigneeID, who must be the actor or an
// active user in one of the actor's assignable roles.
func (s *AssignmentService) AssignLead(ctx context.Context, actor *domain.User, leadID, assigneeID string) (*domain.Lead, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	directory, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	assignee, ok := findUser(directory, assigneeID)
	if !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
	}
	if !assignee.IsActive {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"user_id": assigneeID})
	}
	if assignee.ID != actor.ID && !access.CanAssignTo(actor.Role, assignee.Role) {
		return nil, apperrors.NewForbidden("assignee role not assignable by caller")
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, notFoundOr(err, "lead", leadID)
	}
	if !s.resolver.CanSee(*actor, directory, *lead) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if lead.AssignedTo == assignee.ID {
		return lead, nil
	}

	oldAssignee := lead.AssignedTo
	lead.AssignedTo = assignee.ID
	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, notFoundOr(err, "lead", leadID)
	}
	if err := s.recordAssigneeChange(ctx, actor.ID, lead.ID, oldAssignee, lead.AssignedTo); err != nil {
		s.logger.Warn("record assignee change", zap.String("lead_id", lead.ID), zap.Error(err))
	}
	s.publishAssignmentEvent(ctx, actor.ID, events.LeadAssignedPayload{
		OldAssignee: oldAssignee,
		NewAssignee: lead.AssignedTo,
	}, lead.ID)
	return lead, nil
}

// DistributeUnassigned spreads the given leads across the actor's active
// counselors, keyed on lead ID so reruns pick the same counselor.
func (s *AssignmentService) DistributeUnassigned(ctx context.Context, actor *domain.User, leadIDs []string) ([]domain.Lead, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	directory, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	scope, all := s.resolver.Scope(*actor, directory)
	var pool []domain.User
	for _, user := range access.AssignableUsers(actor.Role, directory) {
		if user.Role != domain.RoleCounselor || !user.IsActive {
			continue
		}
		if _, ok := scope[user.ID]; all || ok {
			pool = append(pool, user)
		}
	}
	if len(pool) == 0 {
		return nil, apperrors.NewConflict("no eligible counselors", nil)
	}
	sort.Slice(pool, func(i, j int) bool {
		return pool[i].CreatedAt.Before(pool[j].CreatedAt)
	})

	assigned := make([]domain.Lead, 0, len(leadIDs))
	for _, id := range leadIDs {
		target := pool[selectIndex(id, len(pool))]
		lead, err := s.AssignLead(ctx, actor, id, target.ID)
		if err != nil {
			return assigned, err
		}
		assigned = append(assigned, *lead)
	}
	return assigned, nil
}

func selectIndex(key string, length int) int {
	if length == 0 {
		return 0
	}
	sum := 0
	for _, ch := range key {
		sum += int(ch)
	}
	return sum % length
}

func findUser(users []domain.User, id string) (domain.User, bool) {
	for _, user := range users {
		if user.ID == id {
			return user, true
		}
	}
	return domain.User{}, false
}

func (s *AssignmentService) recordAssigneeChange(ctx context.Context, actorID, leadID, oldAssignee, newAssignee string) error {
	if s.activityRepo == nil {
		return nil
	}
	return s.activityRepo.Create(ctx, &domain.LeadActivity{
		LeadID:      leadID,
		ChangedByID: actorID,
		ChangeType:  domain.ChangeTypeAssignee,
		OldValue: map[string]any{
			"assigned_to": oldAssignee,
		},
		NewValue: map[string]any{
			"assigned_to": newAssignee,
		},
	})
}

func (s *AssignmentService) publishAssignmentEvent(ctx context.Context, actorID string, payload events.LeadAssignedPayload, leadID string) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.New(events.EventLeadAssigned, leadID, actorID, payload)); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(events.EventLeadAssigned)), zap.Error(err))
	}
}
