package auth

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/taskman-api/internal/config"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// DefaultJWTConfig returns an auth configuration suitable for tests.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
		BcryptCost:                  4,
	}
}

// RequireTestJWTService creates a JWT service from DefaultJWTConfig.
func RequireTestJWTService(t *testing.T) *HMACJWTService {
	t.Helper()
	svc, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "failed to create test JWT service")
	return svc
}

// GenerateAuthHeaderForTestingT returns a Bearer header carrying a valid
// access token for principal.
func GenerateAuthHeaderForTestingT(t *testing.T, svc JWTService, principal domain.Principal) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), principal)
	require.NoError(t, err, "failed to generate access token")
	return "Bearer " + token
}

// GenerateExpiredRefreshTokenForTestingT returns a refresh token that expired
// an hour ago, beyond the allowed clock skew.
func GenerateExpiredRefreshTokenForTestingT(t *testing.T, svc *HMACJWTService, principal domain.Principal) string {
	t.Helper()
	token, err := svc.GenerateRefreshTokenWithExpiry(context.Background(), principal, time.Now().Add(-time.Hour))
	require.NoError(t, err, "failed to generate expired refresh token")
	return token
}
