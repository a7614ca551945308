package pagination

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Pagination modes. Mode selection is a binary switch on Request.Page
// with no fallback.
const (
	ModePage   = "page"
	ModeCursor = "cursor"
)

// Query is the entity-specific base shape a domain service supplies.
// The engine merges it with the parsed predicate, ordering, and window
// clauses; it never overrides the base parts.
//
// Base conditions number their placeholders from $1 and supply matching
// Args; the engine continues the numbering from there.
type Query struct {
	// Table is the FROM clause, e.g. "posts p".
	Table string
	// Columns are the select expressions.
	Columns []string
	// Joins are complete join clauses, e.g. "JOIN users u ON u.id = p.author_id".
	// Only to-one joins belong here: the engine counts rows over the
	// same shape, and a to-many join would inflate both the window and
	// the total.
	Joins []string
	// Where are base conditions ANDed with the parsed predicates.
	Where []string
	// Args are the arguments for Where.
	Args []interface{}
	// Fields maps filter/sort field names onto SQL columns. It is the
	// per-entity allowlist: a field outside it is a client error, and
	// no raw key text ever reaches SQL.
	Fields map[string]string
	// IDColumn is the keyset column; defaults to "id".
	IDColumn string
}

// Engine executes pagination queries and assembles response envelopes.
// It is stateless apart from its collaborators and safe for concurrent
// use.
type Engine struct {
	baseURL *url.URL
	logger  zerolog.Logger
	queries *prometheus.CounterVec
}

// NewEngine creates an Engine. baseURL is the external scheme://host
// prefix used for next-page URL synthesis. queries may be nil when
// metrics are disabled.
func NewEngine(baseURL *url.URL, logger zerolog.Logger, queries *prometheus.CounterVec) *Engine {
	return &Engine{
		baseURL: baseURL,
		logger:  logger.With().Str("component", "pagination").Logger(),
		queries: queries,
	}
}

// Result is the tagged union of the two pagination envelopes. The only
// implementations are *PageResult and *CursorResult; callers switch on
// the concrete type rather than probing optional fields.
type Result[T Keyed] interface {
	// Mode reports ModePage or ModeCursor.
	Mode() string
}

// PageResult is the offset-mode envelope. Total is the full matching
// count, independent of the window size.
type PageResult[T Keyed] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// Mode implements Result.
func (*PageResult[T]) Mode() string { return ModePage }

// Cursor carries the keyset continuation point. NextID is nil when the
// page was short, which is the end-of-stream signal.
type Cursor struct {
	NextID *int64 `json:"next_id"`
}

// CursorResult is the cursor-mode envelope. Count is len(Data); Cursor
// and NextURL are populated only when the page is full, meaning more
// data may exist.
type CursorResult[T Keyed] struct {
	Data    []T     `json:"data"`
	Count   int     `json:"count"`
	Cursor  Cursor  `json:"cursor"`
	NextURL *string `json:"next_url"`
}

// Mode implements Result.
func (*CursorResult[T]) Mode() string { return ModeCursor }

// Paginate runs req against db using the base shape q and returns one of
// the two envelopes. path identifies the resource collection for
// next-page URL synthesis, e.g. "posts" or "chat-rooms/3/messages".
//
// Store errors propagate unchanged; parse-level errors have already been
// surfaced by ParseRequest before any query executes.
func Paginate[T Keyed](ctx context.Context, e *Engine, db Querier, req *Request, q Query, scan Scanner[T], path string) (Result[T], error) {
	if req.Page > 0 {
		return paginateByPage(ctx, e, db, req, q, scan)
	}
	return paginateByCursor(ctx, e, db, req, q, scan, path)
}

// paginateByPage executes offset-mode pagination: a full matching count
// plus the skip/take window.
func paginateByPage[T Keyed](ctx context.Context, e *Engine, db Querier, req *Request, q Query, scan Scanner[T]) (Result[T], error) {
	conditions, args, argIndex, err := composeConditions(req, q)
	if err != nil {
		return nil, err
	}
	whereClause := renderWhere(conditions)
	orderClause, err := renderOrder(req, q, false)
	if err != nil {
		return nil, err
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s%s", q.Table, renderJoins(q.Joins), whereClause)
	var total int64
	if err := db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	skip := req.Take * (req.Page - 1)
	selectQuery := fmt.Sprintf("SELECT %s FROM %s%s%s%s LIMIT $%d OFFSET $%d",
		strings.Join(q.Columns, ", "), q.Table, renderJoins(q.Joins), whereClause, orderClause,
		argIndex, argIndex+1)
	args = append(args, req.Take, skip)

	data, err := collectRows(ctx, db, selectQuery, args, scan, req.Take)
	if err != nil {
		return nil, err
	}

	e.observe(ModePage)
	e.logger.Debug().Int("page", req.Page).Int("take", req.Take).Int64("total", total).
		Int("rows", len(data)).Msg("page pagination executed")

	return &PageResult[T]{Data: data, Total: total}, nil
}

// paginateByCursor executes keyset pagination: a bounded window ordered
// by the configured sort plus the id column. Cursor mode runs no count
// query; a short page is the sole end-of-stream signal.
func paginateByCursor[T Keyed](ctx context.Context, e *Engine, db Querier, req *Request, q Query, scan Scanner[T], path string) (Result[T], error) {
	conditions, args, argIndex, err := composeConditions(req, q)
	if err != nil {
		return nil, err
	}

	idColumn := q.IDColumn
	if idColumn == "" {
		idColumn = "id"
	}
	switch {
	case req.AfterID != 0:
		conditions = append(conditions, fmt.Sprintf("%s > $%d", idColumn, argIndex))
		args = append(args, req.AfterID)
		argIndex++
	case req.BeforeID != 0:
		conditions = append(conditions, fmt.Sprintf("%s < $%d", idColumn, argIndex))
		args = append(args, req.BeforeID)
		argIndex++
	}

	orderClause, err := renderOrder(req, q, true)
	if err != nil {
		return nil, err
	}

	selectQuery := fmt.Sprintf("SELECT %s FROM %s%s%s%s LIMIT $%d",
		strings.Join(q.Columns, ", "), q.Table, renderJoins(q.Joins), renderWhere(conditions),
		orderClause, argIndex)
	args = append(args, req.Take)

	data, err := collectRows(ctx, db, selectQuery, args, scan, req.Take)
	if err != nil {
		return nil, err
	}

	result := &CursorResult[T]{Data: data, Count: len(data)}
	if len(data) > 0 && len(data) == req.Take {
		lastID := data[len(data)-1].PK()
		result.Cursor.NextID = &lastID
		result.NextURL = e.nextURL(path, req, lastID)
	}

	e.observe(ModeCursor)
	e.logger.Debug().Int("take", req.Take).Int("rows", len(data)).
		Bool("has_next", result.Cursor.NextID != nil).Msg("cursor pagination executed")

	return result, nil
}

// composeConditions merges the base conditions with the parsed
// predicates, numbering placeholders after the base args. It returns the
// next free placeholder index for the window clauses.
func composeConditions(req *Request, q Query) ([]string, []interface{}, int, error) {
	conditions := append([]string(nil), q.Where...)
	args := append([]interface{}(nil), q.Args...)
	argIndex := len(q.Args) + 1

	for _, p := range req.Filters {
		column, ok := q.Fields[p.Field]
		if !ok {
			return nil, nil, 0, &FilterError{Key: p.Field, Reason: "unknown filter field"}
		}
		condition, condArgs, next, err := renderCondition(column, p, argIndex)
		if err != nil {
			return nil, nil, 0, err
		}
		conditions = append(conditions, condition)
		args = append(args, condArgs...)
		argIndex = next
	}
	return conditions, args, argIndex, nil
}

// renderOrder builds the ORDER BY clause from the parsed sorts. In
// cursor mode the id column is appended in the same direction as the
// createdAt sort so the keyset stays deterministic when timestamps tie.
func renderOrder(req *Request, q Query, keyset bool) (string, error) {
	idColumn := q.IDColumn
	if idColumn == "" {
		idColumn = "id"
	}

	parts := make([]string, 0, len(req.Sorts)+1)
	orderedByID := false
	for _, s := range req.Sorts {
		column, ok := q.Fields[s.Field]
		if !ok {
			return "", &FilterError{Key: s.Field, Reason: "unknown sort field"}
		}
		if column == idColumn {
			orderedByID = true
		}
		parts = append(parts, fmt.Sprintf("%s %s", column, s.Direction))
	}
	if keyset && !orderedByID {
		parts = append(parts, fmt.Sprintf("%s %s", idColumn, req.Order))
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// renderWhere joins conditions into a WHERE clause, empty when there are
// no conditions.
func renderWhere(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

// renderJoins flattens join clauses for interpolation after the table.
func renderJoins(joins []string) string {
	if len(joins) == 0 {
		return ""
	}
	return " " + strings.Join(joins, " ")
}

// collectRows runs the select and scans every row.
func collectRows[T Keyed](ctx context.Context, db Querier, query string, args []interface{}, scan Scanner[T], capacity int) ([]T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	data := make([]T, 0, capacity)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		data = append(data, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return data, nil
}

// observe bumps the per-mode query counter when metrics are enabled.
func (e *Engine) observe(mode string) {
	if e.queries != nil {
		e.queries.WithLabelValues(mode).Inc()
	}
}
