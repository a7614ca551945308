package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// CommentRepository handles comment persistence.
type CommentRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx pgx.Tx) CommentRepository

	// Create inserts a new comment and populates its ID and timestamps.
	// Returns domain.ErrInvalidInput if the post or author does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment with its author summary.
	// Returns domain.ErrNotFound if no matching comment exists.
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)

	// Delete removes a comment. Returns domain.ErrNotFound if no
	// matching comment exists.
	Delete(ctx context.Context, id int64) error

	// ListByPost runs a paginated listing query scoped to one post.
	ListByPost(ctx context.Context, engine *pagination.Engine, req *pagination.Request, postID int64) (pagination.Result[*domain.Comment], error)
}
