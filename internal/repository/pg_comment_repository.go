package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// Compile-time interface verification.
var _ CommentRepository = (*PgCommentRepository)(nil)

// commentListColumns are the select expressions for listing comments
// joined with their author.
var commentListColumns = []string{
	"c.id", "c.post_id", "c.author_id", "c.content",
	"c.created_at", "c.updated_at",
	"u.nickname",
}

// commentListFields maps filterable and sortable request fields to comment columns.
var commentListFields = map[string]string{
	"id":        "c.id",
	"authorId":  "c.author_id",
	"content":   "c.content",
	"createdAt": "c.created_at",
	"author":    "u.nickname",
}

// PgCommentRepository is a PostgreSQL implementation of CommentRepository.
type PgCommentRepository struct {
	db DBTX
}

// NewPgCommentRepository creates a new PostgreSQL comment repository.
func NewPgCommentRepository(db DBTX) *PgCommentRepository {
	return &PgCommentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PgCommentRepository) WithTx(tx pgx.Tx) CommentRepository {
	return &PgCommentRepository{db: tx}
}

// Create inserts a new comment and populates its ID and timestamps.
func (r *PgCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.NewValidationError("comment", "comment cannot be nil")
	}
	if comment.PostID == 0 {
		return domain.NewValidationError("post_id", "post ID is required")
	}
	if comment.AuthorID == 0 {
		return domain.NewValidationError("author_id", "author ID is required")
	}
	if comment.Content == "" {
		return domain.NewValidationError("content", "content is required")
	}

	query := `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		comment.PostID, comment.AuthorID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)

	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.NewValidationError("post_id", "post or author does not exist")
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment with its author summary.
func (r *PgCommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.content,
			c.created_at, c.updated_at,
			u.nickname
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1`

	row := r.db.QueryRow(ctx, query, id)
	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("comment", id)
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// Delete removes a comment.
func (r *PgCommentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("comment", id)
	}

	return nil
}

// ListByPost runs a paginated listing query scoped to one post. The post
// scope is a base condition, so request filters compose with it.
func (r *PgCommentRepository) ListByPost(ctx context.Context, engine *pagination.Engine, req *pagination.Request, postID int64) (pagination.Result[*domain.Comment], error) {
	q := pagination.Query{
		Table:    "comments c",
		Columns:  commentListColumns,
		Joins:    []string{"JOIN users u ON u.id = c.author_id"},
		Where:    []string{"c.post_id = $1"},
		Args:     []interface{}{postID},
		Fields:   commentListFields,
		IDColumn: "c.id",
	}

	path := fmt.Sprintf("/posts/%d/comments", postID)
	return pagination.Paginate(ctx, engine, r.db, req, q, scanCommentFromRows, path)
}

// commentScanDest holds the destination pointers for scanning a comment
// row joined with its author nickname.
type commentScanDest struct {
	comment        domain.Comment
	authorNickname string
}

// destinations returns the slice of pointers for Scan operations.
func (d *commentScanDest) destinations() []interface{} {
	return []interface{}{
		&d.comment.ID, &d.comment.PostID, &d.comment.AuthorID, &d.comment.Content,
		&d.comment.CreatedAt, &d.comment.UpdatedAt,
		&d.authorNickname,
	}
}

// finalize attaches the author summary scanned from the join.
func (d *commentScanDest) finalize() *domain.Comment {
	d.comment.Author = &domain.UserSummary{ID: d.comment.AuthorID, Nickname: d.authorNickname}
	return &d.comment
}

// scanComment scans a single row into a Comment.
func scanComment(row pgx.Row) (*domain.Comment, error) {
	var dest commentScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanCommentFromRows scans the current row from pgx.Rows into a Comment.
func scanCommentFromRows(rows pgx.Rows) (*domain.Comment, error) {
	var dest commentScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}
