package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskman-api/internal/config"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/platform/logger"
)

// MinSecretLength is the minimum HS256 signing key length.
const MinSecretLength = 32

// defaultClockSkew is the leeway applied to exp, nbf and iat.
const defaultClockSkew = 2 * time.Minute

// HMACJWTService implements JWTService with HS256 signatures.
type HMACJWTService struct {
	signingKey           []byte
	tokenLifetime        time.Duration
	refreshTokenLifetime time.Duration
	timeFunc             func() time.Time // Injectable for testing
	clockSkew            time.Duration
}

type jwtCustomClaims struct {
	UserID      int64           `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        domain.RoleName `json:"role"`
	Permissions []string        `json:"permissions"`
	TokenType   string          `json:"type"`
	jwt.RegisteredClaims
}

var _ JWTService = (*HMACJWTService)(nil)

// NewJWTService creates a JWTService from the auth configuration.
func NewJWTService(cfg config.AuthConfig) (*HMACJWTService, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if cfg.TokenLifetimeMinutes <= 0 || cfg.RefreshTokenLifetimeMinutes <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}

	return newHMACJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.TokenLifetimeMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenLifetimeMinutes)*time.Minute,
		time.Now,
	), nil
}

func newHMACJWTService(secret string, access, refresh time.Duration, timeFunc func() time.Time) *HMACJWTService {
	return &HMACJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        access,
		refreshTokenLifetime: refresh,
		timeFunc:             timeFunc,
		clockSkew:            defaultClockSkew,
	}
}

// GenerateToken implements JWTService.
func (s *HMACJWTService) GenerateToken(ctx context.Context, principal domain.Principal) (string, error) {
	now := s.timeFunc()
	return s.sign(ctx, principal, TokenTypeAccess, now, now.Add(s.tokenLifetime))
}

// GenerateRefreshToken implements JWTService.
func (s *HMACJWTService) GenerateRefreshToken(ctx context.Context, principal domain.Principal) (string, error) {
	now := s.timeFunc()
	return s.sign(ctx, principal, TokenTypeRefresh, now, now.Add(s.refreshTokenLifetime))
}

// GenerateRefreshTokenWithExpiry issues a refresh token expiring at expiry.
// Used to exercise expiration paths.
func (s *HMACJWTService) GenerateRefreshTokenWithExpiry(
	ctx context.Context,
	principal domain.Principal,
	expiry time.Time,
) (string, error) {
	return s.sign(ctx, principal, TokenTypeRefresh, s.timeFunc(), expiry)
}

func (s *HMACJWTService) sign(
	ctx context.Context,
	p domain.Principal,
	tokenType string,
	issuedAt, expiresAt time.Time,
) (string, error) {
	claims := jwtCustomClaims{
		UserID:      p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Role:        p.Role,
		Permissions: p.Permissions,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContextOrDefault(ctx, slog.Default()).Error("failed to sign JWT",
			slog.String("error", err.Error()),
			slog.Int64("user_id", p.ID),
			slog.String("token_type", tokenType))
		return "", fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", tokenType, err)
	}
	return signed, nil
}

// parse verifies signature, algorithm and time claims. The returned error is
// one of jwt's sentinel errors.
func (s *HMACJWTService) parse(tokenString string) (*jwtCustomClaims, error) {
	now := s.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func toClaims(c *jwtCustomClaims) *Claims {
	return &Claims{
		UserID:      c.UserID,
		Name:        c.Name,
		Email:       c.Email,
		Role:        c.Role,
		Permissions: c.Permissions,
		TokenType:   c.TokenType,
		Subject:     c.Subject,
		IssuedAt:    c.IssuedAt.Time,
		ExpiresAt:   c.ExpiresAt.Time,
		ID:          c.ID,
	}
}

// ValidateToken implements JWTService.
func (s *HMACJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContextOrDefault(ctx, slog.Default())

	claims, err := s.parse(tokenString)
	if err != nil {
		log.Debug("access token validation failed", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	if claims.TokenType != TokenTypeAccess {
		log.Debug("token validation failed: wrong token type",
			slog.String("expected", TokenTypeAccess),
			slog.String("actual", claims.TokenType))
		return nil, ErrWrongTokenType
	}

	return toClaims(claims), nil
}

// ValidateRefreshToken implements JWTService.
func (s *HMACJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContextOrDefault(ctx, slog.Default())

	claims, err := s.parse(tokenString)
	if err != nil {
		log.Debug("refresh token validation failed", slog.String("error", err.Error()))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredRefreshToken
		}
		return nil, ErrInvalidRefreshToken
	}

	if claims.TokenType != TokenTypeRefresh {
		log.Debug("refresh token validation failed: wrong token type",
			slog.String("expected", TokenTypeRefresh),
			slog.String("actual", claims.TokenType))
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, ErrWrongTokenType)
	}

	return toClaims(claims), nil
}
