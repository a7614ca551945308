package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// FollowRepository handles follow relations. Confirmation and removal
// participate in caller transactions so the denormalized user counters
// stay consistent with the relation rows.
type FollowRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx pgx.Tx) FollowRepository

	// Create inserts an unconfirmed follow relation.
	// Returns domain.ErrAlreadyExists if the relation already exists and
	// domain.ErrInvalidInput if either user does not exist.
	Create(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error)

	// Get retrieves the relation between two users.
	// Returns domain.ErrNotFound if no relation exists.
	Get(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error)

	// Confirm flips an unconfirmed relation to confirmed.
	// Returns domain.ErrNotFound if no unconfirmed relation exists.
	Confirm(ctx context.Context, followerID, followeeID int64) error

	// Delete removes the relation and reports whether it was confirmed,
	// so callers know whether counters need decrementing.
	// Returns domain.ErrNotFound if no relation exists.
	Delete(ctx context.Context, followerID, followeeID int64) (confirmed bool, err error)

	// ListFollowers lists relations pointing at userID, joined with the
	// follower's summary. Unconfirmed relations are included only when
	// includeUnconfirmed is set.
	ListFollowers(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error)

	// ListFollowing lists relations originating from userID, joined with
	// the followee's summary. Unconfirmed relations are included only
	// when includeUnconfirmed is set.
	ListFollowing(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error)
}
