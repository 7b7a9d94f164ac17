package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/admissions-crm/internal/access"
	"github.com/spec-kit/admissions-crm/internal/auth"
	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/repository"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// UserService manages the organization directory.
type UserService struct {
	users      repository.UserRepository
	resolver   *access.Resolver
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles what the directory service needs.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Resolver   *access.Resolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// CreateUserInput carries the fields of a new directory entry.
type CreateUserInput struct {
	Name              string
	Email             string
	Phone             string
	Password          string
	Role              domain.Role
	ReportsTo         string
	Department        string
	Branch            domain.Branch
	PreferredLanguage string
	WhatsAppNumber    string
}

// UpdateUserInput carries optional changes to a directory entry.
type UpdateUserInput struct {
	Name              *string
	Phone             *string
	Department        *string
	Branch            *domain.Branch
	PreferredLanguage *string
	WhatsAppNumber    *string
	Role              *domain.Role
	ReportsTo         *string
}

// UserListFilters define listing parameters.
type UserListFilters struct {
	Branch          domain.Branch
	Search          string
	IncludeInactive bool
}

// RoleOptions lists what the actor may add and assign.
type RoleOptions struct {
	Addable    []domain.Role
	Assignable []domain.Role
}

// Directory returns every user, active or not. Reporting chains may pass
// through deactivated users, so visibility is computed over the full set.
func (s *UserService) Directory(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return users, nil
}

// CreateUser adds a user below the actor. ReportsTo defaults to the actor.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !access.CanAdd(actor.Role, input.Role) {
		return nil, apperrors.NewForbidden("role cannot be added by caller")
	}
	branch := input.Branch
	if branch == "" {
		branch = actor.Branch
	}
	if branch != "" && !domain.IsKnownBranch(branch) {
		return nil, apperrors.NewValidationError("unknown branch", map[string]any{"branch": branch})
	}
	if err := passwordError(input.Password); err != nil {
		return nil, err
	}

	directory, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}

	managerID := strings.TrimSpace(input.ReportsTo)
	if managerID == "" {
		managerID = actor.ID
	}
	user := &domain.User{
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.TrimSpace(input.Email),
		Phone:             input.Phone,
		Role:              input.Role,
		ReportsTo:         &managerID,
		Department:        input.Department,
		IsActive:          true,
		Branch:            branch,
		PreferredLanguage: input.PreferredLanguage,
		WhatsAppNumber:    input.WhatsAppNumber,
	}
	if err := s.checkManager(actor, user, managerID, directory); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.publish(ctx, events.New(events.EventUserCreated, "", actor.ID, events.UserCreatedPayload{
		UserID:    user.ID,
		Role:      string(user.Role),
		ReportsTo: managerID,
	}))
	return user, nil
}

// UpdateUser edits a user the actor manages. Users may edit their own profile
// fields but not their own role or manager.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id string, input UpdateUserInput) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	directory, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}

	self := user.ID == actor.ID
	if !self && !s.canManage(actor, user, directory) {
		return nil, apperrors.NewForbidden("user outside caller's organization")
	}
	if self && (input.Role != nil || input.ReportsTo != nil) {
		return nil, apperrors.NewForbidden("cannot change own role or manager")
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.Branch != nil {
		if !domain.IsKnownBranch(*input.Branch) {
			return nil, apperrors.NewValidationError("unknown branch", map[string]any{"branch": *input.Branch})
		}
		user.Branch = *input.Branch
	}
	if input.PreferredLanguage != nil {
		user.PreferredLanguage = *input.PreferredLanguage
	}
	if input.WhatsAppNumber != nil {
		user.WhatsAppNumber = *input.WhatsAppNumber
	}
	if input.Role != nil {
		if !access.CanAdd(actor.Role, *input.Role) {
			return nil, apperrors.NewForbidden("role cannot be granted by caller")
		}
		user.Role = *input.Role
	}
	if input.Role != nil || input.ReportsTo != nil {
		managerID := user.ManagerID()
		if input.ReportsTo != nil {
			managerID = strings.TrimSpace(*input.ReportsTo)
		}
		if _, below := access.Subordinates(user.ID, directory)[managerID]; below {
			return nil, apperrors.NewConflict("manager reports to this user", map[string]any{"reports_to": managerID})
		}
		if err := s.checkManager(actor, user, managerID, directory); err != nil {
			return nil, err
		}
		user.ReportsTo = &managerID
	}
	if input.Role != nil {
		if err := checkDirectReports(user, directory); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return user, nil
}

// ResetPassword sets a new password for a user the actor manages.
func (s *UserService) ResetPassword(ctx context.Context, actor *domain.User, id, password string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := passwordError(password); err != nil {
		return err
	}
	directory, err := s.Directory(ctx)
	if err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "user", id)
	}
	if !s.canManage(actor, user, directory) {
		return apperrors.NewForbidden("user outside caller's organization")
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.ToDomainError(err)
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID), zap.String("actor_id", actor.ID))
	return nil
}

// DeactivateUser disables login for a managed user. Their leads stay assigned.
func (s *UserService) DeactivateUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.ID == id {
		return nil, apperrors.NewConflict("cannot deactivate yourself", nil)
	}
	directory, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	if !s.canManage(actor, user, directory) {
		return nil, apperrors.NewForbidden("user outside caller's organization")
	}
	user.IsActive = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	s.logger.Info("user deactivated", zap.String("user_id", user.ID), zap.String("actor_id", actor.ID))
	return user, nil
}

// ListUsers returns users at or below the actor's role, filtered by branch and
// a free-text term over name, email, phone, role and branch.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User, filters UserListFilters) ([]domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	directory, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.TrimSpace(filters.Search)
	result := make([]domain.User, 0)
	for _, user := range access.VisibleUsers(*actor, directory, filters.Branch) {
		if !filters.IncludeInactive && !user.IsActive {
			continue
		}
		if term != "" && !userMatches(user, term) {
			continue
		}
		result = append(result, user)
	}
	return result, nil
}

// ReportingLine returns the manager chain above a visible user, top first.
func (s *UserService) ReportingLine(ctx context.Context, actor *domain.User, id string) ([]domain.User, error) {
	directory, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range directory {
		if user.ID == id {
			if user.ID != actor.ID && !s.resolver.CanManage(*actor, directory, user.ID) {
				return nil, apperrors.NewForbidden("user outside caller's organization")
			}
			return access.ReportingLine(user, directory), nil
		}
	}
	return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
}

// Roles reports the roles the actor may add and assign leads to.
func (s *UserService) Roles(actor *domain.User) RoleOptions {
	return RoleOptions{
		Addable:    access.AddableRoles(actor.Role),
		Assignable: access.AssignableRoles(actor.Role),
	}
}

// AssignableUsers lists active users the actor may hand leads to.
func (s *UserService) AssignableUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	active := true
	users, err := s.users.List(ctx, repository.UserFilter{Active: &active})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return access.AssignableUsers(actor.Role, users), nil
}

// canManage requires target to be in the actor's scope and strictly below the actor's role.
func (s *UserService) canManage(actor, target *domain.User, directory []domain.User) bool {
	return access.Outranks(actor.Role, target.Role) && s.resolver.CanManage(*actor, directory, target.ID)
}

func (s *UserService) checkManager(actor *domain.User, user *domain.User, managerID string, directory []domain.User) error {
	var manager *domain.User
	for i := range directory {
		if directory[i].ID == managerID {
			manager = &directory[i]
			break
		}
	}
	if manager == nil {
		return apperrors.NewValidationError("manager not found", map[string]any{"reports_to": managerID})
	}
	if manager.ID != actor.ID && !s.resolver.CanManage(*actor, directory, manager.ID) {
		return apperrors.NewForbidden("manager outside caller's organization")
	}
	if err := access.ValidateReportsTo(*user, *manager); err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"reports_to": managerID})
	}
	return nil
}

// checkDirectReports keeps every direct report of user strictly below user's role.
func checkDirectReports(user *domain.User, directory []domain.User) error {
	var offending []string
	for _, report := range directory {
		if report.ID == user.ID || report.ManagerID() != user.ID {
			continue
		}
		if err := access.ValidateReportsTo(report, *user); err != nil {
			offending = append(offending, report.ID)
		}
	}
	if len(offending) > 0 {
		return apperrors.NewConflict("role must stay above direct reports", map[string]any{"reports": offending})
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func userMatches(user domain.User, term string) bool {
	for _, value := range []string{user.Name, user.Email, user.Phone, user.Role.Label(), string(user.Branch)} {
		if value != "" && domain.FoldContains(value, term) {
			return true
		}
	}
	return false
}
