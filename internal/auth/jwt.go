package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
)

// TokenType separates short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

const (
	issuer = "gabinete"
	leeway = 30 * time.Second
)

// Claims is the signed payload. TenantID is empty for profiles not yet
// linked to an office.
type Claims struct {
	jwt.RegisteredClaims
	TenantID  string      `json:"tid,omitempty"`
	UserID    string      `json:"uid"`
	Role      domain.Role `json:"role"`
	TokenType TokenType   `json:"typ"`
}

// ErrInvalidToken is returned when a JWT cannot be parsed, has expired or
// is of the wrong type.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

func IssueAccessToken(secret string, tenantID *uuid.UUID, userID uuid.UUID, role domain.Role, ttl time.Duration) (string, error) {
	return issueToken(secret, tenantID, userID, role, TokenAccess, ttl)
}

func IssueRefreshToken(secret string, tenantID *uuid.UUID, userID uuid.UUID, role domain.Role, ttl time.Duration) (string, error) {
	return issueToken(secret, tenantID, userID, role, TokenRefresh, ttl)
}

func issueToken(secret string, tenantID *uuid.UUID, userID uuid.UUID, role domain.Role, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID.String(),
		Role:      role,
		TokenType: typ,
	}
	if tenantID != nil && *tenantID != uuid.Nil {
		claims.TenantID = tenantID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.issueToken: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature, issuer and lifetime of a token of
// any type.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}
	return claims, nil
}

// ParseAccessToken validates an access token and returns the caller it
// identifies.
func ParseAccessToken(secret, tokenString string) (domain.Actor, error) {
	claims, err := ValidateToken(secret, tokenString)
	if err != nil {
		return domain.Actor{}, err
	}
	if claims.TokenType != TokenAccess {
		return domain.Actor{}, fmt.Errorf("auth.ParseAccessToken: %s token: %w", claims.TokenType, ErrInvalidToken)
	}
	return claims.Actor()
}

// Actor converts the claims into the caller identity.
func (c *Claims) Actor() (domain.Actor, error) {
	if !c.Role.Valid() {
		return domain.Actor{}, fmt.Errorf("auth.Claims.Actor: role %q: %w", c.Role, ErrInvalidToken)
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("auth.Claims.Actor: user id: %w", ErrInvalidToken)
	}
	actor := domain.Actor{UserID: userID, Role: c.Role}
	if c.TenantID != "" {
		if actor.TenantID, err = uuid.Parse(c.TenantID); err != nil {
			return domain.Actor{}, fmt.Errorf("auth.Claims.Actor: tenant id: %w", ErrInvalidToken)
		}
	}
	return actor, nil
}
