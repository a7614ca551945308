// Package repository provides data access interfaces and implementations
// for the social feed service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL
// implementations following the repository pattern to abstract data
// persistence from business logic.
//
// # Repository Interfaces
//
//   - UserRepository: Manages user accounts and follow counters
//   - PostRepository: Manages posts and their listing queries
//   - ImageRepository: Manages post image attachments
//   - CommentRepository: Manages comments and comment counters
//   - FollowRepository: Manages follow relations and confirmation
//   - ChatRepository: Manages chat rooms, memberships, and messages
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple
// goroutines. The underlying pgxpool handles connection pooling and
// synchronization.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Wrap database errors with context using fmt.Errorf with %w verb.
// Common errors include:
//
//   - domain.ErrNotFound: Resource does not exist
//   - domain.ErrAlreadyExists: Unique constraint violation
//   - domain.ErrInvalidInput: Invalid parameters provided
//
// # Transactions
//
// Repositories are bound to a DBTX, which is either the shared connection
// pool or a single transaction. Every PostgreSQL implementation provides a
// WithTx method returning a copy of the repository bound to the given
// transaction. Services resolve the transactional variant when the caller
// supplies a transaction and fall back to the pool-bound instance
// otherwise:
//
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    txRepo := postRepo.WithTx(tx)
//	    return txRepo.Create(ctx, post)
//	})
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/feedstack/social-feed-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction
// contexts. This allows repositories to work with both direct pool
// connections and transactions.
type DBTX = database.DBTX

// PostgreSQL error codes used for constraint violation detection.
const (
	pgUniqueViolation     = "23505" // unique_violation
	pgForeignKeyViolation = "23503" // foreign_key_violation
)

// isPgUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// isPgForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isPgForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}
