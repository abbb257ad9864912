package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
	apperrors "github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and account management.
type AuthService struct {
	users       repository.UserRepository
	revocations auth.RevocationStore
	tokenMgr    *auth.TokenManager
	bcryptCost  int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Revocations auth.RevocationStore
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber *string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        domain.PublicUser
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	revocations := deps.Revocations
	if revocations == nil {
		revocations = auth.NewMemoryRevocationStore()
	}
	return &AuthService{
		users:       deps.UserRepo,
		revocations: revocations,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// NormalizeEmail trims and lower-cases an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a non-admin account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.PublicUser, error) {
	user, err := s.createUser(ctx, in, false)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return domain.SanitizeUser(user), nil
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, isAdmin bool) (*domain.User, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates a user by email and password and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return LoginResult{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return LoginResult{}, apperrors.NewInternalError(err)
	}
	return LoginResult{AccessToken: token, ExpiresAt: exp, User: domain.SanitizeUser(user)}, nil
}

// Logout revokes the presented token until it would have expired anyway.
// Missing or unparsable tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil || claims.ID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.Expiry()); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// UpdateProfile applies patch to the user's own account after re-checking the current password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, currentPassword string, patch domain.UserPatch) (domain.PublicUser, error) {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return domain.PublicUser{}, err
		}
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PublicUser{}, apperrors.NewUnauthorized("user not found")
		}
		return domain.PublicUser{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return domain.PublicUser{}, apperrors.NewUnauthorized("current password is incorrect")
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		user.Email = NormalizeEmail(*patch.Email)
	}
	if patch.PhoneNumber != nil {
		phone := *patch.PhoneNumber
		user.PhoneNumber = &phone
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return domain.PublicUser{}, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return domain.PublicUser{}, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		case errors.Is(err, pgx.ErrNoRows):
			return domain.PublicUser{}, apperrors.NewUnauthorized("user not found")
		}
		return domain.PublicUser{}, apperrors.MapError(err)
	}
	return domain.SanitizeUser(user), nil
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return domain.SanitizeUsers(users), nil
}

// DeleteUser removes a non-admin account that has no assigned work orders.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	if user.IsAdmin {
		return apperrors.NewForbidden("administrators cannot be deleted")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserInUse):
			return apperrors.NewConflict("user is assigned to work orders", map[string]any{"id": id})
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap administrator unless an account with that email exists.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	if _, err := s.createUser(ctx, RegisterInput{Name: name, Email: email, Password: password}, true); err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("invalid user", map[string]any{"name": "is required"})
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Revocations exposes the revocation store for middleware usage.
func (s *AuthService) Revocations() auth.RevocationStore {
	return s.revocations
}
