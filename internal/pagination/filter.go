package pagination

import (
	"net/url"
	"sort"
	"strings"
)

// Key namespaces and the segment delimiter.
const (
	delimiter      = "__"
	namespaceWhere = "where"
	namespaceOrder = "order"
)

// Predicate is one parsed filter condition. Predicates are conjunctive:
// the engine joins them with AND.
type Predicate struct {
	Field    string
	Op       Operator
	Operands []string
}

// Sort is one parsed ordering descriptor.
type Sort struct {
	Field     string
	Direction Direction
}

// ParseFilters parses the where__/order__ keys of a flat query bag into
// predicate and ordering descriptors. Keys outside the two namespaces
// are ignored; they are pagination scalars handled by ParseRequest.
//
// Output order follows the lexicographic order of the keys. Predicates
// are conjunctive so ordering never affects query results, but a stable
// order keeps generated SQL deterministic.
func ParseFilters(values url.Values) ([]Predicate, []Sort, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		predicates []Predicate
		sorts      []Sort
	)
	for _, key := range keys {
		parts := strings.Split(key, delimiter)
		if parts[0] != namespaceWhere && parts[0] != namespaceOrder {
			continue
		}
		if len(parts) != 2 && len(parts) != 3 {
			return nil, nil, &FilterError{
				Key:    key,
				Reason: "key must split into 2 or 3 segments",
			}
		}

		value := values.Get(key)

		if parts[0] == namespaceOrder {
			if len(parts) != 2 {
				return nil, nil, &FilterError{Key: key, Reason: "order keys take no operator"}
			}
			direction, err := parseDirection(key, value)
			if err != nil {
				return nil, nil, err
			}
			sorts = append(sorts, Sort{Field: parts[1], Direction: direction})
			continue
		}

		predicate, err := parsePredicate(key, parts, value)
		if err != nil {
			return nil, nil, err
		}
		predicates = append(predicates, predicate)
	}
	return predicates, sorts, nil
}

// parsePredicate builds a Predicate from an already-split where key.
func parsePredicate(key string, parts []string, value string) (Predicate, error) {
	field := parts[1]

	// Two segments: implicit equality with the verbatim value.
	if len(parts) == 2 {
		return Predicate{Field: field, Op: OpEquals, Operands: []string{value}}, nil
	}

	op, ok := parseOperator(parts[2])
	if !ok {
		return Predicate{}, &FilterError{Key: key, Reason: "unknown operator " + parts[2]}
	}

	switch op {
	case OpBetween:
		// The value is itself a comma-separated pair.
		operands := strings.Split(value, ",")
		if len(operands) != 2 {
			return Predicate{}, &FilterError{Key: key, Reason: "between takes exactly 2 comma-separated values"}
		}
		return Predicate{Field: field, Op: op, Operands: operands}, nil
	case OpILike:
		// Substring containment: wrap with wildcard markers here so the
		// engine hands the operand to the store untouched.
		return Predicate{Field: field, Op: op, Operands: []string{"%" + value + "%"}}, nil
	default:
		return Predicate{Field: field, Op: op, Operands: []string{value}}, nil
	}
}

// parseDirection validates a raw sort direction value.
func parseDirection(key, value string) (Direction, error) {
	switch Direction(strings.ToUpper(value)) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", &FilterError{Key: key, Reason: "direction must be ASC or DESC"}
	}
}
