package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/feedstack/social-feed-service/internal/auth"
	"github.com/feedstack/social-feed-service/internal/config"
	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/observability"
	"github.com/feedstack/social-feed-service/internal/pagination"
	"github.com/feedstack/social-feed-service/internal/repository"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Nickname string
	Email    string
	Password string
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserService implements account registration, authentication and user
// queries.
type UserService struct {
	users   repository.UserRepository
	tokens  *auth.TokenManager
	authCfg config.AuthConfig
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenManager,
	authCfg config.AuthConfig,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:   users,
		tokens:  tokens,
		authCfg: authCfg,
		metrics: metrics,
		logger:  logger.With().Str("component", "user_service").Logger(),
	}
}

// Register creates a new account. Email and nickname must be unused;
// the password is stored as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Nickname = strings.TrimSpace(input.Nickname)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Nickname == "" {
		return nil, domain.NewValidationError("nickname", "must not be empty")
	}
	if input.Email == "" {
		return nil, domain.NewValidationError("email", "must not be empty")
	}

	taken, err := s.users.ExistsByEmailOrNickname(ctx, input.Email, input.Nickname)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if taken {
		return nil, domain.NewAlreadyExistsError("user", "email or nickname already registered")
	}

	hash, err := auth.HashPassword(input.Password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Nickname: input.Nickname,
		Email:    input.Email,
		Password: hash,
		Role:     domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.metrics.RecordUserRegistered()
	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a token pair. The refresh token
// is persisted so it can be rotated and revoked.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		// A wrong email and a wrong password must be indistinguishable.
		return nil, nil, domain.ErrUnauthorized
	}

	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, nil, domain.ErrUnauthorized
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The
// presented token must match the one on record, so each refresh token
// is single-use.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, domain.ErrUnauthorized
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("user_id", user.ID).Msg("token pair rotated")
	return pair, nil
}

// Logout revokes the user's refresh token.
func (s *UserService) Logout(ctx context.Context, userID int64) error {
	return s.users.UpdateRefreshToken(ctx, userID, "")
}

func (s *UserService) issueTokens(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns a page of users per the pagination request.
func (s *UserService) List(ctx context.Context, engine *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.User], error) {
	return s.users.List(ctx, engine, req)
}

// Delete removes an account. Users may delete themselves; admins may
// delete anyone.
func (s *UserService) Delete(ctx context.Context, requesterID int64, requesterRole domain.UserRole, id int64) error {
	if requesterID != id && requesterRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
