// Package pagination is the generic data-access core shared by every
// domain service. It parses flat `where__<field>[__<operator>]` /
// `order__<field>` query bags into typed predicate and ordering
// descriptors, and executes either offset ("page") or keyset ("cursor")
// pagination against PostgreSQL, assembling the response envelope
// including next-page URL synthesis.
//
// # Query bag format
//
// Recognized scalar keys are `page` (optional, switches to offset mode),
// `take` (window size, default 20), and the cursor bounds
// `where__id__more_than` / `where__id__less_than`. Every other
// `where__*` key becomes a conjunctive predicate and every `order__*`
// key an ordering descriptor. Keys outside the two namespaces are
// ignored by this package.
//
// # Transaction participation
//
// The engine reads through the Querier interface, which is satisfied by
// *database.DB, *pgxpool.Pool, and pgx.Tx, so paginated reads can run
// inside a caller-supplied transaction when needed.
package pagination

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Direction is a sort direction.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "ASC"
	// Desc sorts descending.
	Desc Direction = "DESC"
)

// Querier is the minimal query surface the engine needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Keyed is implemented by entities with an integer primary key. The key
// is the keyset cursor, so it must be monotonic with insertion order.
type Keyed interface {
	PK() int64
}

// Scanner reads one row into an entity. It is called once per row with
// the cursor already positioned by rows.Next.
type Scanner[T Keyed] func(rows pgx.Rows) (T, error)
