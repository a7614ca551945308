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
var _ FollowRepository = (*PgFollowRepository)(nil)

// followListFields maps filterable and sortable request fields to
// follow relation columns.
var followListFields = map[string]string{
	"id":        "f.id",
	"confirmed": "f.confirmed",
	"createdAt": "f.created_at",
	"nickname":  "u.nickname",
}

// PgFollowRepository is a PostgreSQL implementation of FollowRepository.
type PgFollowRepository struct {
	db DBTX
}

// NewPgFollowRepository creates a new PostgreSQL follow repository.
func NewPgFollowRepository(db DBTX) *PgFollowRepository {
	return &PgFollowRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PgFollowRepository) WithTx(tx pgx.Tx) FollowRepository {
	return &PgFollowRepository{db: tx}
}

// Create inserts an unconfirmed follow relation.
func (r *PgFollowRepository) Create(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error) {
	if followerID == 0 || followeeID == 0 {
		return nil, domain.NewValidationError("follow", "follower and followee IDs are required")
	}
	if followerID == followeeID {
		return nil, domain.NewValidationError("follow", "cannot follow yourself")
	}

	query := `
		INSERT INTO follow_relations (follower_id, followee_id, confirmed)
		VALUES ($1, $2, FALSE)
		RETURNING id, created_at, updated_at`

	relation := &domain.FollowRelation{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}

	err := r.db.QueryRow(ctx, query, followerID, followeeID).
		Scan(&relation.ID, &relation.CreatedAt, &relation.UpdatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.NewAlreadyExistsError("follow relation",
				fmt.Sprintf("%d -> %d", followerID, followeeID))
		}
		if isPgForeignKeyViolation(err) {
			return nil, domain.NewValidationError("follow", "user does not exist")
		}
		return nil, fmt.Errorf("failed to create follow relation: %w", err)
	}

	return relation, nil
}

// Get retrieves the relation between two users.
func (r *PgFollowRepository) Get(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error) {
	query := `
		SELECT id, follower_id, followee_id, confirmed, created_at, updated_at
		FROM follow_relations
		WHERE follower_id = $1 AND followee_id = $2`

	var relation domain.FollowRelation
	err := r.db.QueryRow(ctx, query, followerID, followeeID).Scan(
		&relation.ID, &relation.FollowerID, &relation.FolloweeID,
		&relation.Confirmed, &relation.CreatedAt, &relation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("follow relation %d -> %d: %w", followerID, followeeID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get follow relation: %w", err)
	}

	return &relation, nil
}

// Confirm flips an unconfirmed relation to confirmed.
func (r *PgFollowRepository) Confirm(ctx context.Context, followerID, followeeID int64) error {
	query := `
		UPDATE follow_relations
		SET confirmed = TRUE, updated_at = NOW()
		WHERE follower_id = $1 AND followee_id = $2 AND confirmed = FALSE`

	result, err := r.db.Exec(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to confirm follow relation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("unconfirmed follow relation %d -> %d: %w", followerID, followeeID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes the relation and reports whether it was confirmed.
func (r *PgFollowRepository) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `
		DELETE FROM follow_relations
		WHERE follower_id = $1 AND followee_id = $2
		RETURNING confirmed`

	var confirmed bool
	err := r.db.QueryRow(ctx, query, followerID, followeeID).Scan(&confirmed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("follow relation %d -> %d: %w", followerID, followeeID, domain.ErrNotFound)
		}
		return false, fmt.Errorf("failed to delete follow relation: %w", err)
	}

	return confirmed, nil
}

// ListFollowers lists relations pointing at userID with follower summaries.
func (r *PgFollowRepository) ListFollowers(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error) {
	q := r.listQuery("f.follower_id", "f.followee_id = $1", userID, includeUnconfirmed)
	path := fmt.Sprintf("/users/%d/followers", userID)
	return pagination.Paginate(ctx, engine, r.db, req, q, scanFollowerRelation, path)
}

// ListFollowing lists relations originating from userID with followee summaries.
func (r *PgFollowRepository) ListFollowing(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error) {
	q := r.listQuery("f.followee_id", "f.follower_id = $1", userID, includeUnconfirmed)
	path := fmt.Sprintf("/users/%d/following", userID)
	return pagination.Paginate(ctx, engine, r.db, req, q, scanFolloweeRelation, path)
}

// listQuery builds the base shape shared by both listing directions.
// peerColumn is the relation column joined against the users table and
// scopeCondition pins the other side to the listed user.
func (r *PgFollowRepository) listQuery(peerColumn, scopeCondition string, userID int64, includeUnconfirmed bool) pagination.Query {
	where := []string{scopeCondition}
	if !includeUnconfirmed {
		where = append(where, "f.confirmed = TRUE")
	}

	return pagination.Query{
		Table: "follow_relations f",
		Columns: []string{
			"f.id", "f.follower_id", "f.followee_id", "f.confirmed",
			"f.created_at", "f.updated_at",
			"u.id", "u.nickname",
		},
		Joins:    []string{fmt.Sprintf("JOIN users u ON u.id = %s", peerColumn)},
		Where:    where,
		Args:     []interface{}{userID},
		Fields:   followListFields,
		IDColumn: "f.id",
	}
}

// scanFollowRelation scans a relation row joined with one user summary.
func scanFollowRelation(rows pgx.Rows) (*domain.FollowRelation, *domain.UserSummary, error) {
	var relation domain.FollowRelation
	var peer domain.UserSummary
	err := rows.Scan(
		&relation.ID, &relation.FollowerID, &relation.FolloweeID, &relation.Confirmed,
		&relation.CreatedAt, &relation.UpdatedAt,
		&peer.ID, &peer.Nickname,
	)
	if err != nil {
		return nil, nil, err
	}
	return &relation, &peer, nil
}

// scanFollowerRelation attaches the joined summary as the follower side.
func scanFollowerRelation(rows pgx.Rows) (*domain.FollowRelation, error) {
	relation, peer, err := scanFollowRelation(rows)
	if err != nil {
		return nil, err
	}
	relation.Follower = peer
	return relation, nil
}

// scanFolloweeRelation attaches the joined summary as the followee side.
func scanFolloweeRelation(rows pgx.Rows) (*domain.FollowRelation, error) {
	relation, peer, err := scanFollowRelation(rows)
	if err != nil {
		return nil, err
	}
	relation.Followee = peer
	return relation, nil
}
