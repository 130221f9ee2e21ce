package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ubuxa-console/internal/caching"
	"ubuxa-console/internal/models"
	"ubuxa-console/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrInviteInvalid      = errors.New("invite token is invalid or expired")
)

const (
	blacklistKeyPrefix = "ubuxa:blacklist:"
	inviteKeyPrefix    = "ubuxa:invite:"
	inviteTokenTTL     = 48 * time.Hour
	inviteTokenLength  = 48
)

// AuthService manages console operator sessions: HS256 access tokens,
// a Redis blacklist for logout, and invite tokens for onboarding new
// operators.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Logout(ctx context.Context, claims *TokenClaims) error
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	InviteAdmin(ctx context.Context, email, role string) (string, error)
	SetPassword(ctx context.Context, inviteToken, password string) (*models.AdminUser, error)
}

// TokenClaims is the console access token payload.
type TokenClaims struct {
	AdminID string `json:"admin_id"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

type authService struct {
	adminRepo     repositories.AdminRepository
	cacheSvc      caching.CacheService
	notifications NotificationService
	jwtSecret     []byte
	tokenTTL      int
}

func NewAuthService(adminRepo repositories.AdminRepository, cacheSvc caching.CacheService, notifications NotificationService, jwtSecret string, tokenTTLSeconds int) AuthService {
	return &authService{
		adminRepo:     adminRepo,
		cacheSvc:      cacheSvc,
		notifications: notifications,
		jwtSecret:     []byte(jwtSecret),
		tokenTTL:      tokenTTLSeconds,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.generateToken(admin)
}

func (s *authService) generateToken(admin *models.AdminUser) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		AdminID: admin.ID.String(),
		Role:    admin.Role,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ubuxa-console",
			Subject:   admin.ID.String(),
			Audience:  jwt.ClaimStrings{"ubuxa-console-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokenTTL,
		TokenID:     tokenID,
		UserID:      admin.ID.String(),
		IssuedAt:    now,
	}, nil
}

// Logout blacklists the token ID until its natural expiry so the same
// token cannot be replayed.
func (s *authService) Logout(ctx context.Context, claims *TokenClaims) error {
	ttl := time.Duration(s.tokenTTL) * time.Second
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	key := blacklistKeyPrefix + claims.TokenID
	return s.cacheSvc.SetString(ctx, key, "revoked", ttl)
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	// A missing blacklist entry (redis.Nil) means the token was never
	// revoked. Any other error means the blacklist is unreachable, and
	// a token that cannot be checked is not accepted.
	switch _, err := s.cacheSvc.GetString(ctx, blacklistKeyPrefix+claims.TokenID); {
	case err == nil:
		return nil, ErrTokenRevoked
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("token revocation check failed: %v", err)
	}
	return claims, nil
}

// InviteAdmin issues an opaque invite token for a new console operator
// and emails the set-password link. Returns the token so owner tooling
// can surface it directly.
func (s *authService) InviteAdmin(ctx context.Context, email, role string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") {
		return "", &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if role != models.AdminRoleOwner && role != models.AdminRoleAdmin {
		return "", &ValidationError{Field: "role", Message: "role must be owner or admin"}
	}

	token := random.String(inviteTokenLength)
	value := fmt.Sprintf("%s:%s", email, role)
	if err := s.cacheSvc.SetString(ctx, inviteKeyPrefix+token, value, inviteTokenTTL); err != nil {
		return "", fmt.Errorf("failed to store invite token: %v", err)
	}

	if err := s.notifications.SendAdminInvite(ctx, email, token); err != nil {
		log.Printf("Failed to send invite email to %s: %v", email, err)
	}
	return token, nil
}

// SetPassword consumes an invite token and creates the operator
// account. The token is single use: it is deleted before the account
// write so a replay finds nothing.
func (s *authService) SetPassword(ctx context.Context, inviteToken, password string) (*models.AdminUser, error) {
	if len(password) < 8 {
		return nil, &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	key := inviteKeyPrefix + inviteToken
	value, err := s.cacheSvc.GetString(ctx, key)
	if err != nil {
		return nil, ErrInviteInvalid
	}

	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return nil, ErrInviteInvalid
	}
	email, role := parts[0], parts[1]

	if err := s.cacheSvc.Delete(ctx, key); err != nil {
		log.Printf("Failed to delete invite token: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if existing, err := s.adminRepo.GetByEmail(ctx, email); err == nil {
		if err := s.adminRepo.UpdatePassword(ctx, existing.ID, string(hash)); err != nil {
			return nil, err
		}
		return existing, nil
	}

	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
