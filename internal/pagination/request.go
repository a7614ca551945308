package pagination

import (
	"net/url"
	"strconv"
)

// DefaultTake is the window size used when the query bag has no take.
const DefaultTake = 20

// Pagination scalar keys. The cursor bounds live in the where namespace
// but are consumed here, not by the filter parser, so the engine applies
// each bound exactly once.
const (
	keyPage     = "page"
	keyTake     = "take"
	keyAfterID  = "where__id__more_than"
	keyBeforeID = "where__id__less_than"

	// sortCreatedAt is the conventional sort field; every request gets
	// an ascending sort on it unless the bag says otherwise.
	sortCreatedAt = "createdAt"
)

// Request is a parsed pagination request. Page > 0 selects offset mode;
// otherwise the engine runs in cursor mode. Page mode wins when a bag
// supplies both page and a cursor bound.
type Request struct {
	// Page is the 1-indexed page number, 0 in cursor mode.
	Page int
	// Take is the window size, always positive.
	Take int
	// AfterID is the exclusive lower keyset bound (0 when absent).
	AfterID int64
	// BeforeID is the exclusive upper keyset bound (0 when absent).
	BeforeID int64
	// Order is the direction of the createdAt sort; it also selects
	// which bound parameter the next-page URL carries.
	Order Direction
	// Filters are the conjunctive predicates parsed from the bag,
	// excluding the cursor bounds.
	Filters []Predicate
	// Sorts are the ordering descriptors, including the createdAt
	// default when the bag had none.
	Sorts []Sort

	// values retains the original bag for next-page URL synthesis.
	values url.Values
}

// ParseRequest parses a flat query bag into a Request. It fails fast
// with ErrBadArgument on malformed scalars and with ErrBadFilter on
// malformed filter keys, before any store query executes.
func ParseRequest(values url.Values) (*Request, error) {
	req := &Request{
		Take:   DefaultTake,
		Order:  Asc,
		values: values,
	}

	if raw := values.Get(keyPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ArgumentError{Param: keyPage, Reason: "not an integer"}
		}
		if page < 1 {
			return nil, &ArgumentError{Param: keyPage, Reason: "must be positive"}
		}
		req.Page = page
	}

	if raw := values.Get(keyTake); raw != "" {
		take, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ArgumentError{Param: keyTake, Reason: "not an integer"}
		}
		if take < 1 {
			return nil, &ArgumentError{Param: keyTake, Reason: "must be positive"}
		}
		req.Take = take
	}

	var err error
	if req.AfterID, err = parseBound(values, keyAfterID); err != nil {
		return nil, err
	}
	if req.BeforeID, err = parseBound(values, keyBeforeID); err != nil {
		return nil, err
	}
	// A well-formed client sends at most one bound; rejecting the
	// ambiguous case beats silently ignoring one of them.
	if req.AfterID != 0 && req.BeforeID != 0 {
		return nil, &ArgumentError{
			Param:  keyAfterID,
			Reason: "mutually exclusive with " + keyBeforeID,
		}
	}

	filterable := cloneWithoutBounds(values)
	if req.Filters, req.Sorts, err = ParseFilters(filterable); err != nil {
		return nil, err
	}

	// The createdAt sort is always present; its direction doubles as
	// the cursor direction.
	found := false
	for _, s := range req.Sorts {
		if s.Field == sortCreatedAt {
			req.Order = s.Direction
			found = true
			break
		}
	}
	if !found {
		req.Sorts = append(req.Sorts, Sort{Field: sortCreatedAt, Direction: Asc})
	}

	return req, nil
}

// parseBound reads one cursor bound from the bag.
func parseBound(values url.Values, key string) (int64, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ArgumentError{Param: key, Reason: "not an integer"}
	}
	if id < 1 {
		return 0, &ArgumentError{Param: key, Reason: "must be positive"}
	}
	return id, nil
}

// cloneWithoutBounds copies the bag minus the cursor bound keys.
func cloneWithoutBounds(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, vs := range values {
		if key == keyAfterID || key == keyBeforeID {
			continue
		}
		out[key] = vs
	}
	return out
}
