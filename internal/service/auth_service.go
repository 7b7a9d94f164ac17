package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/admissions-crm/internal/auth"
	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/repository"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// passwordError maps a rejected password to a validation failure.
func passwordError(password string) error {
	if err := auth.ValidatePassword(password); err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"min_length": auth.MinPasswordLength})
	}
	return nil
}

// AuthService coordinates login and credential changes.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.TokenManager,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Login authenticates a directory user and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Token, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, domain.Token{}, apperrors.ToDomainError(err)
	}
	if !user.IsActive {
		return nil, domain.Token{}, apperrors.NewUnauthorized("account deactivated")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, err := s.tokenMgr.GenerateToken(*user)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// ChangePassword updates the actor's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, current, next string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := passwordError(next); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return notFoundOr(err, "user", actor.ID)
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.ToDomainError(err)
	}
	return nil
}

// EnsureDemoAdmin seeds a senior manager when the directory is empty, so a
// fresh install or local-mode run can be logged into.
func (s *AuthService) EnsureDemoAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	existing, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if len(existing) > 0 || email == "" {
		return nil, nil
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	admin := &domain.User{
		Name:              "Admin",
		Email:             email,
		PasswordHash:      hash,
		Role:              domain.RoleSeniorManager,
		IsActive:          true,
		Branch:            domain.BranchHyderabad,
		PreferredLanguage: "en",
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	s.logger.Info("seeded demo admin", zap.String("email", admin.Email))
	return admin, nil
}
