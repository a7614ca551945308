// Package auth provides password hashing and JWT issuance for the
// social feed service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/feedstack/social-feed-service/internal/config"
	"github.com/feedstack/social-feed-service/internal/domain"
)

// Token types carried in the claims so a refresh token can never pass as
// an access token.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload issued for authenticated users.
type Claims struct {
	UserID    int64           `json:"user_id"`
	Role      domain.UserRole `json:"role"`
	TokenType string          `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256-signed access and refresh
// tokens.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a TokenManager from the auth configuration.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: JWT secret is required (set SOCIALFEED_AUTH_JWT_SECRET)")
	}

	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// IssueAccess signs a short-lived access token for the user.
func (m *TokenManager) IssueAccess(user *domain.User) (string, error) {
	return m.issue(user, TokenTypeAccess, m.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the user.
func (m *TokenManager) IssueRefresh(user *domain.User) (string, error) {
	return m.issue(user, TokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) issue(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a token, enforcing the expected token
// type. Invalid, expired, or mistyped tokens return
// domain.ErrUnauthorized.
func (m *TokenManager) Verify(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w: %w", err, domain.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("token type %q where %q expected: %w", claims.TokenType, wantType, domain.ErrUnauthorized)
	}

	return claims, nil
}

// HashPassword hashes a plaintext password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", domain.NewValidationError("password", "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash against a plaintext candidate.
// A mismatch returns domain.ErrUnauthorized so callers do not leak
// whether the account exists.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("password mismatch: %w", domain.ErrUnauthorized)
	}
	return nil
}
