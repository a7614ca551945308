package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
)

// Compile-time interface verification.
var _ ImageRepository = (*PgImageRepository)(nil)

// PgImageRepository is a PostgreSQL implementation of ImageRepository.
type PgImageRepository struct {
	db DBTX
}

// NewPgImageRepository creates a new PostgreSQL image repository.
func NewPgImageRepository(db DBTX) *PgImageRepository {
	return &PgImageRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PgImageRepository) WithTx(tx pgx.Tx) ImageRepository {
	return &PgImageRepository{db: tx}
}

// Create inserts a new image row and populates its ID and timestamps.
func (r *PgImageRepository) Create(ctx context.Context, image *domain.PostImage) error {
	if image == nil {
		return domain.NewValidationError("image", "image cannot be nil")
	}
	if image.PostID == 0 {
		return domain.NewValidationError("post_id", "post ID is required")
	}
	if image.Path == "" {
		return domain.NewValidationError("path", "image path is required")
	}
	if image.Kind == "" {
		image.Kind = domain.ImageKindPost
	}

	query := `
		INSERT INTO post_images (post_id, position, kind, path)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		image.PostID, image.Order, image.Kind, image.Path,
	).Scan(&image.ID, &image.CreatedAt, &image.UpdatedAt)

	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.NewValidationError("post_id", "post does not exist")
		}
		return fmt.Errorf("failed to create image: %w", err)
	}

	return nil
}

// ListByPostID returns the images of a post ordered by position.
func (r *PgImageRepository) ListByPostID(ctx context.Context, postID int64) ([]domain.PostImage, error) {
	return listImagesByPostID(ctx, r.db, postID)
}

// DeleteByPostID removes all images of a post.
func (r *PgImageRepository) DeleteByPostID(ctx context.Context, postID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM post_images WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	return nil
}

// listImagesByPostID is shared with the post repository so a post can be
// hydrated with its images in one call.
func listImagesByPostID(ctx context.Context, db DBTX, postID int64) ([]domain.PostImage, error) {
	query := `
		SELECT id, post_id, position, kind, path, created_at, updated_at
		FROM post_images
		WHERE post_id = $1
		ORDER BY position ASC`

	rows, err := db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []domain.PostImage
	for rows.Next() {
		var img domain.PostImage
		err := rows.Scan(&img.ID, &img.PostID, &img.Order, &img.Kind, &img.Path,
			&img.CreatedAt, &img.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}
