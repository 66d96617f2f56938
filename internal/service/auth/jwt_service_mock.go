package auth

import (
	"context"
	"time"

	"github.com/phrazzld/taskman-api/internal/domain"
)

// MockJWTService is a configurable JWTService for tests. Function fields take
// precedence over the fixed values.
type MockJWTService struct {
	GenerateTokenFunc        func(ctx context.Context, principal domain.Principal) (string, error)
	ValidateTokenFunc        func(ctx context.Context, tokenString string) (*Claims, error)
	GenerateRefreshTokenFunc func(ctx context.Context, principal domain.Principal) (string, error)
	ValidateRefreshTokenFunc func(ctx context.Context, tokenString string) (*Claims, error)

	Token           string
	RefreshToken    string
	TokenError      error
	ValidationError error
	Claims          *Claims
}

var _ JWTService = (*MockJWTService)(nil)

// NewMockJWTService returns a mock whose tokens validate to a USER principal
// with id 1.
func NewMockJWTService() *MockJWTService {
	now := time.Now()
	return &MockJWTService{
		Token:        "mock-jwt-token",
		RefreshToken: "mock-refresh-token",
		Claims: &Claims{
			UserID:      1,
			Name:        "Mock User",
			Email:       "mock@example.com",
			Role:        domain.RoleUser,
			Permissions: []string{domain.PermTasksGet},
			TokenType:   TokenTypeAccess,
			Subject:     "1",
			IssuedAt:    now,
			ExpiresAt:   now.Add(time.Hour),
			ID:          "mock-jti",
		},
	}
}

// GenerateToken implements JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, principal domain.Principal) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(ctx, principal)
	}
	return m.Token, m.TokenError
}

// ValidateToken implements JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, tokenString)
	}
	return m.Claims, m.ValidationError
}

// GenerateRefreshToken implements JWTService.
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, principal domain.Principal) (string, error) {
	if m.GenerateRefreshTokenFunc != nil {
		return m.GenerateRefreshTokenFunc(ctx, principal)
	}
	return m.RefreshToken, m.TokenError
}

// ValidateRefreshToken implements JWTService.
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(ctx, tokenString)
	}
	return m.Claims, m.ValidationError
}
