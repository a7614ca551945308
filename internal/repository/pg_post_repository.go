package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// Compile-time interface verification.
var _ PostRepository = (*PgPostRepository)(nil)

// postListColumns are the select expressions for listing posts joined
// with their author.
var postListColumns = []string{
	"p.id", "p.author_id", "p.title", "p.content",
	"p.like_count", "p.comment_count",
	"p.created_at", "p.updated_at",
	"u.nickname",
}

// postListFields maps filterable and sortable request fields to post columns.
var postListFields = map[string]string{
	"id":           "p.id",
	"authorId":     "p.author_id",
	"title":        "p.title",
	"content":      "p.content",
	"likeCount":    "p.like_count",
	"commentCount": "p.comment_count",
	"createdAt":    "p.created_at",
	"author":       "u.nickname",
}

// PgPostRepository is a PostgreSQL implementation of PostRepository.
type PgPostRepository struct {
	db DBTX
}

// NewPgPostRepository creates a new PostgreSQL post repository.
func NewPgPostRepository(db DBTX) *PgPostRepository {
	return &PgPostRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PgPostRepository) WithTx(tx pgx.Tx) PostRepository {
	return &PgPostRepository{db: tx}
}

// Create inserts a new post and populates its ID and timestamps.
func (r *PgPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if post == nil {
		return domain.NewValidationError("post", "post cannot be nil")
	}
	if post.AuthorID == 0 {
		return domain.NewValidationError("author_id", "author ID is required")
	}
	if post.Title == "" {
		return domain.NewValidationError("title", "title is required")
	}

	query := `
		INSERT INTO posts (author_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		post.AuthorID, post.Title, post.Content,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.NewValidationError("author_id", "author does not exist")
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// GetByID retrieves a post with its author summary and images.
func (r *PgPostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.title, p.content,
			p.like_count, p.comment_count,
			p.created_at, p.updated_at,
			u.nickname
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`

	row := r.db.QueryRow(ctx, query, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("post", id)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	images, err := listImagesByPostID(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	post.Images = images

	return post, nil
}

// Update persists the title and content of an existing post.
func (r *PgPostRepository) Update(ctx context.Context, post *domain.Post) error {
	if post == nil {
		return domain.NewValidationError("post", "post cannot be nil")
	}
	if post.Title == "" {
		return domain.NewValidationError("title", "title is required")
	}

	query := `
		UPDATE posts
		SET title = $1, content = $2, updated_at = $3
		WHERE id = $4`

	post.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(ctx, query, post.Title, post.Content, post.UpdatedAt, post.ID)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("post", post.ID)
	}

	return nil
}

// Delete removes a post.
func (r *PgPostRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("post", id)
	}

	return nil
}

// Exists reports whether a post with the given ID exists.
func (r *PgPostRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}
	return exists, nil
}

// IncrementCommentCount atomically adds delta to the comment counter.
func (r *PgPostRepository) IncrementCommentCount(ctx context.Context, id int64, delta int) error {
	return r.incrementCounter(ctx, "comment_count", id, delta)
}

// IncrementLikeCount atomically adds delta to the like counter.
func (r *PgPostRepository) IncrementLikeCount(ctx context.Context, id int64, delta int) error {
	return r.incrementCounter(ctx, "like_count", id, delta)
}

// incrementCounter applies a relative update to one of the post counters.
// The column name comes from a fixed caller-supplied set, never user input.
func (r *PgPostRepository) incrementCounter(ctx context.Context, column string, id int64, delta int) error {
	query := fmt.Sprintf(`
		UPDATE posts
		SET %s = %s + $1, updated_at = $2
		WHERE id = $3`, column, column)

	result, err := r.db.Exec(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("post", id)
	}

	return nil
}

// List runs a paginated listing query driven by the parsed request.
func (r *PgPostRepository) List(ctx context.Context, engine *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.Post], error) {
	q := pagination.Query{
		Table:    "posts p",
		Columns:  postListColumns,
		Joins:    []string{"JOIN users u ON u.id = p.author_id"},
		Fields:   postListFields,
		IDColumn: "p.id",
	}

	return pagination.Paginate(ctx, engine, r.db, req, q, scanPostFromRows, "/posts")
}

// postScanDest holds the destination pointers for scanning a post row
// joined with its author nickname.
type postScanDest struct {
	post           domain.Post
	authorNickname string
}

// destinations returns the slice of pointers for Scan operations.
func (d *postScanDest) destinations() []interface{} {
	return []interface{}{
		&d.post.ID, &d.post.AuthorID, &d.post.Title, &d.post.Content,
		&d.post.LikeCount, &d.post.CommentCount,
		&d.post.CreatedAt, &d.post.UpdatedAt,
		&d.authorNickname,
	}
}

// finalize attaches the author summary scanned from the join.
func (d *postScanDest) finalize() *domain.Post {
	d.post.Author = &domain.UserSummary{ID: d.post.AuthorID, Nickname: d.authorNickname}
	return &d.post
}

// scanPost scans a single row into a Post.
func scanPost(row pgx.Row) (*domain.Post, error) {
	var dest postScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanPostFromRows scans the current row from pgx.Rows into a Post.
func scanPostFromRows(rows pgx.Rows) (*domain.Post, error) {
	var dest postScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}
