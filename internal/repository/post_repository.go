package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// PostRepository handles post persistence and listing.
type PostRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx pgx.Tx) PostRepository

	// Create inserts a new post and populates its ID and timestamps.
	// Returns domain.ErrInvalidInput if the author does not exist.
	Create(ctx context.Context, post *domain.Post) error

	// GetByID retrieves a post with its author summary and images.
	// Returns domain.ErrNotFound if no matching post exists.
	GetByID(ctx context.Context, id int64) (*domain.Post, error)

	// Update persists the title and content of an existing post.
	// Returns domain.ErrNotFound if no matching post exists.
	Update(ctx context.Context, post *domain.Post) error

	// Delete removes a post. Image rows and comments cascade at the
	// schema level. Returns domain.ErrNotFound if no matching post
	// exists.
	Delete(ctx context.Context, id int64) error

	// Exists reports whether a post with the given ID exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// IncrementCommentCount atomically adds delta to the comment counter.
	// Returns domain.ErrNotFound if no matching post exists.
	IncrementCommentCount(ctx context.Context, id int64, delta int) error

	// IncrementLikeCount atomically adds delta to the like counter.
	// Returns domain.ErrNotFound if no matching post exists.
	IncrementLikeCount(ctx context.Context, id int64, delta int) error

	// List runs a paginated listing query driven by the parsed request.
	// Each returned post carries its author summary but not its images.
	List(ctx context.Context, engine *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.Post], error)
}

// ImageRepository handles post image attachments.
type ImageRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx pgx.Tx) ImageRepository

	// Create inserts a new image row and populates its ID and timestamps.
	// Returns domain.ErrInvalidInput if the post does not exist.
	Create(ctx context.Context, image *domain.PostImage) error

	// ListByPostID returns the images of a post ordered by their
	// position within the post.
	ListByPostID(ctx context.Context, postID int64) ([]domain.PostImage, error)

	// DeleteByPostID removes all images of a post.
	DeleteByPostID(ctx context.Context, postID int64) error
}
