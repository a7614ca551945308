package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// Compile-time interface verification.
var _ UserRepository = (*PgUserRepository)(nil)

const userColumns = `id, nickname, email, password, role, follower_count, following_count, refresh_token, created_at, updated_at`

// userListFields maps filterable and sortable request fields to user columns.
var userListFields = map[string]string{
	"id":             "id",
	"nickname":       "nickname",
	"role":           "role",
	"followerCount":  "follower_count",
	"followingCount": "following_count",
	"createdAt":      "created_at",
}

// PgUserRepository is a PostgreSQL implementation of UserRepository.
type PgUserRepository struct {
	db DBTX
}

// NewPgUserRepository creates a new PostgreSQL user repository.
func NewPgUserRepository(db DBTX) *PgUserRepository {
	return &PgUserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PgUserRepository) WithTx(tx pgx.Tx) UserRepository {
	return &PgUserRepository{db: tx}
}

// Create inserts a new user and populates its ID and timestamps.
func (r *PgUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.NewValidationError("user", "user cannot be nil")
	}
	if user.Nickname == "" {
		return domain.NewValidationError("nickname", "nickname is required")
	}
	if user.Email == "" {
		return domain.NewValidationError("email", "email is required")
	}
	if user.Password == "" {
		return domain.NewValidationError("password", "password hash is required")
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	query := `
		INSERT INTO users (nickname, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Nickname, user.Email, user.Password, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("user", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by primary key.
func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	row := r.db.QueryRow(ctx, query, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email address.
func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	row := r.db.QueryRow(ctx, query, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByNickname retrieves a user by nickname.
func (r *PgUserRepository) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	if nickname == "" {
		return nil, domain.NewValidationError("nickname", "nickname is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE nickname = $1`, userColumns)

	row := r.db.QueryRow(ctx, query, nickname)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", nickname, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by nickname: %w", err)
	}

	return user, nil
}

// ExistsByEmailOrNickname reports whether any user holds the given email or nickname.
func (r *PgUserRepository) ExistsByEmailOrNickname(ctx context.Context, email, nickname string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR nickname = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email, nickname).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

// UpdateRefreshToken replaces the stored refresh token.
func (r *PgUserRepository) UpdateRefreshToken(ctx context.Context, id int64, token string) error {
	query := `
		UPDATE users
		SET refresh_token = $1, updated_at = $2
		WHERE id = $3`

	result, err := r.db.Exec(ctx, query, nullString(token), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("user", id)
	}

	return nil
}

// AdjustFollowerCount atomically adds delta to the follower counter.
func (r *PgUserRepository) AdjustFollowerCount(ctx context.Context, id int64, delta int) error {
	return r.adjustCounter(ctx, "follower_count", id, delta)
}

// AdjustFollowingCount atomically adds delta to the following counter.
func (r *PgUserRepository) AdjustFollowingCount(ctx context.Context, id int64, delta int) error {
	return r.adjustCounter(ctx, "following_count", id, delta)
}

// adjustCounter applies a relative update to one of the follow counters.
// The column name comes from a fixed caller-supplied set, never user input.
func (r *PgUserRepository) adjustCounter(ctx context.Context, column string, id int64, delta int) error {
	query := fmt.Sprintf(`
		UPDATE users
		SET %s = %s + $1, updated_at = $2
		WHERE id = $3`, column, column)

	result, err := r.db.Exec(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to adjust %s: %w", column, err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("user", id)
	}

	return nil
}

// List runs a paginated listing query driven by the parsed request.
func (r *PgUserRepository) List(ctx context.Context, engine *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.User], error) {
	q := pagination.Query{
		Table:    "users",
		Columns:  strings.Split(userColumns, ", "),
		Fields:   userListFields,
		IDColumn: "id",
	}

	return pagination.Paginate(ctx, engine, r.db, req, q, scanUserFromRows, "/users")
}

// Delete removes a user.
func (r *PgUserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("user", id)
	}

	return nil
}

// userScanDest holds the destination pointers for scanning a user row.
type userScanDest struct {
	user         domain.User
	refreshToken *string
}

// destinations returns the slice of pointers for Scan operations.
func (d *userScanDest) destinations() []interface{} {
	return []interface{}{
		&d.user.ID, &d.user.Nickname, &d.user.Email, &d.user.Password, &d.user.Role,
		&d.user.FollowerCount, &d.user.FollowingCount, &d.refreshToken,
		&d.user.CreatedAt, &d.user.UpdatedAt,
	}
}

// finalize performs post-scan processing of nullable fields.
func (d *userScanDest) finalize() *domain.User {
	if d.refreshToken != nil {
		d.user.RefreshToken = *d.refreshToken
	}
	return &d.user
}

// scanUser scans a single row into a User.
func scanUser(row pgx.Row) (*domain.User, error) {
	var dest userScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanUserFromRows scans the current row from pgx.Rows into a User.
func scanUserFromRows(rows pgx.Rows) (*domain.User, error) {
	var dest userScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// nullString returns a pointer to the string if non-empty, otherwise nil.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
