package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// UserRepository handles user account persistence and the denormalized
// follow counters.
type UserRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx pgx.Tx) UserRepository

	// Create inserts a new user and populates its ID and timestamps.
	// Returns domain.ErrAlreadyExists if the email or nickname is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by primary key.
	// Returns domain.ErrNotFound if no matching user exists.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns domain.ErrNotFound if no matching user exists.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByNickname retrieves a user by nickname.
	// Returns domain.ErrNotFound if no matching user exists.
	GetByNickname(ctx context.Context, nickname string) (*domain.User, error)

	// ExistsByEmailOrNickname reports whether any user holds the given
	// email or nickname. Used for pre-registration checks.
	ExistsByEmailOrNickname(ctx context.Context, email, nickname string) (bool, error)

	// UpdateRefreshToken replaces the stored refresh token. An empty
	// token clears it. Returns domain.ErrNotFound if no matching user
	// exists.
	UpdateRefreshToken(ctx context.Context, id int64, token string) error

	// AdjustFollowerCount atomically adds delta to the follower counter.
	// Returns domain.ErrNotFound if no matching user exists.
	AdjustFollowerCount(ctx context.Context, id int64, delta int) error

	// AdjustFollowingCount atomically adds delta to the following counter.
	// Returns domain.ErrNotFound if no matching user exists.
	AdjustFollowingCount(ctx context.Context, id int64, delta int) error

	// List runs a paginated listing query driven by the parsed request.
	List(ctx context.Context, engine *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.User], error)

	// Delete removes a user. Returns domain.ErrNotFound if no matching
	// user exists.
	Delete(ctx context.Context, id int64) error
}
