package auth

import (
	"context"
	"time"

	"github.com/phrazzld/taskman-api/internal/domain"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService issues and validates the access and refresh tokens.
type JWTService interface {
	// GenerateToken creates a signed access token embedding the principal.
	GenerateToken(ctx context.Context, principal domain.Principal) (string, error)

	// ValidateToken validates an access token and returns its claims.
	// Returns ErrExpiredToken, ErrWrongTokenType or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token embedding the
	// principal. Refresh tokens live longer than access tokens.
	GenerateRefreshToken(ctx context.Context, principal domain.Principal) (string, error)

	// ValidateRefreshToken validates a refresh token and returns its claims.
	// Returns ErrExpiredRefreshToken or ErrInvalidRefreshToken.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of a valid token.
type Claims struct {
	UserID      int64
	Name        string
	Email       string
	Role        domain.RoleName
	Permissions []string

	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Principal returns the identity carried by the token.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{
		ID:          c.UserID,
		Name:        c.Name,
		Email:       c.Email,
		Role:        c.Role,
		Permissions: c.Permissions,
	}
}
