package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/platform/logger"
	"github.com/phrazzld/taskman-api/internal/redact"
	"github.com/phrazzld/taskman-api/internal/service/auth"
	"github.com/phrazzld/taskman-api/internal/store"
)

// TokenPair is the result of a login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService authenticates users and rotates their tokens.
type AuthService interface {
	// Login verifies credentials and issues a token pair embedding the
	// user's identity, role and permissions. Returns ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*TokenPair, error)

	// Refresh validates a refresh token and issues a new pair. Returns
	// auth.ErrExpiredRefreshToken or auth.ErrInvalidRefreshToken.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Signup registers a new user with role USER.
	Signup(ctx context.Context, in CreateUserInput) (*domain.User, error)
}

// AuthServiceImpl implements AuthService.
type AuthServiceImpl struct {
	userStore         store.UserStore
	roleStore         store.RoleStore
	users             UserService
	jwt               auth.JWTService
	verifier          auth.PasswordVerifier
	reloadPermissions bool
	logger            *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceOption customises an AuthServiceImpl.
type AuthServiceOption func(*AuthServiceImpl)

// WithPermissionReload makes Refresh re-resolve role and permissions from the
// database instead of copying them from the presented token.
func WithPermissionReload(enabled bool) AuthServiceOption {
	return func(s *AuthServiceImpl) { s.reloadPermissions = enabled }
}

// NewAuthService creates an AuthService.
func NewAuthService(
	userStore store.UserStore,
	roleStore store.RoleStore,
	users UserService,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
	opts ...AuthServiceOption,
) (*AuthServiceImpl, error) {
	if userStore == nil || roleStore == nil || users == nil || jwtService == nil || verifier == nil {
		return nil, errors.New("auth service: stores, user service, jwt service and verifier are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &AuthServiceImpl{
		userStore: userStore,
		roleStore: roleStore,
		users:     users,
		jwt:       jwtService,
		verifier:  verifier,
		logger:    logger.With(slog.String("component", "auth_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// compareDummy spends one password comparison so that an unknown email
// takes as long as a wrong password.
func (s *AuthServiceImpl) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		if hasher, ok := s.verifier.(auth.PasswordHasher); ok {
			if h, err := hasher.Hash("taskman-login-placeholder"); err == nil {
				s.dummyHash = h
			}
		}
	})
	if s.dummyHash != "" {
		_ = s.verifier.Compare(s.dummyHash, password)
	}
}

// Login implements AuthService.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login attempt for unknown email")
			s.compareDummy(password)
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login attempt with wrong password", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	principal, err := resolvePrincipal(ctx, s.roleStore, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.issue(ctx, principal)
	if err != nil {
		return nil, err
	}

	log.Info("user logged in", slog.Int64("user_id", user.ID), slog.String("role", string(principal.Role)))
	return pair, nil
}

// Refresh implements AuthService.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	principal := claims.Principal()
	if s.reloadPermissions {
		user, err := s.userStore.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				log.Debug("refresh token for deleted user", slog.Int64("user_id", claims.UserID))
				return nil, auth.ErrInvalidRefreshToken
			}
			return nil, fmt.Errorf("failed to reload user: %w", err)
		}
		if principal, err = resolvePrincipal(ctx, s.roleStore, user); err != nil {
			return nil, err
		}
	}

	pair, err := s.issue(ctx, principal)
	if err != nil {
		return nil, err
	}

	log.Debug("tokens refreshed", slog.Int64("user_id", principal.ID))
	return pair, nil
}

// Signup implements AuthService.
func (s *AuthServiceImpl) Signup(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	return s.users.Create(ctx, in, nil)
}

func (s *AuthServiceImpl) issue(ctx context.Context, p domain.Principal) (*TokenPair, error) {
	access, err := s.jwt.GenerateToken(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
