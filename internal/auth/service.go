package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/gosuda/gabinete/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16

	minPasswordLen = 8
)

// Tokens is a freshly issued session.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Service provides authentication operations.
type Service struct {
	profiles   domain.ProfileRepository
	tenants    domain.TenantRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service.
func NewService(profiles domain.ProfileRepository, tenants domain.TenantRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		profiles:   profiles,
		tenants:    tenants,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register signs a citizen up to the office identified by tenantSlug.
// The password is hashed with argon2id before storage.
func (s *Service) Register(ctx context.Context, tenantSlug, email, password, name string) (*domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("auth.Register: %w", domain.Invalid("email", "invalid_email", "email is invalid"))
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("auth.Register: %w",
			domain.Invalid("password", "weak_password", fmt.Sprintf("password must have at least %d characters", minPasswordLen)))
	}
	if name == "" {
		return nil, fmt.Errorf("auth.Register: %w", domain.Invalid("name", "required", "name is required"))
	}

	tenant, err := s.tenants.GetBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: tenant: %w", err)
	}
	if !tenant.Active {
		return nil, fmt.Errorf("auth.Register: tenant inactive: %w", domain.ErrNotFound)
	}

	// Check if the email is already taken.
	existing, err := s.profiles.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Register: %w", ErrUserAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	now := time.Now().UTC()
	tenantID := tenant.ID
	p := &domain.Profile{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RoleCitizen,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return p, nil
}

// Login validates email/password and returns access + refresh JWT tokens.
func (s *Service) Login(ctx context.Context, email, password string) (*Tokens, *domain.Profile, error) {
	p, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !p.Active || !verifyPassword(password, p.PasswordHash) {
		return nil, nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	tokens, err := s.issue(p)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.Login: %w", err)
	}

	return tokens, p, nil
}

// RefreshToken validates a refresh token and issues a new access token
// carrying the profile's current tenant and role.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != TokenRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %s token: %w", claims.TokenType, ErrInvalidToken)
	}

	holder, err := claims.Actor()
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	// Verify the profile still exists and fetch its current role.
	p, err := s.profiles.GetByID(ctx, holder.UserID)
	if err != nil || !p.Active {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrUserNotFound)
	}

	newAccess, err := IssueAccessToken(s.jwtSecret, p.TenantID, p.ID, p.Role, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	return newAccess, nil
}

// GetProfile returns a profile by ID (for middleware use).
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetProfile: %w", err)
	}

	return p, nil
}

func (s *Service) issue(p *domain.Profile) (*Tokens, error) {
	access, err := IssueAccessToken(s.jwtSecret, p.TenantID, p.ID, p.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := IssueRefreshToken(s.jwtSecret, p.TenantID, p.ID, p.Role, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(computed, expectedHash) == 1
}
