package pagination

import (
	"fmt"
)

// Operator is the closed enumeration of comparison operators usable in
// three-segment filter keys. Unknown tokens are rejected at parse time;
// everywhere else the enum is matched exhaustively, so an out-of-range
// value cannot reach SQL rendering.
type Operator int

const (
	// OpEquals is the implicit equality of two-segment keys.
	OpEquals Operator = iota
	// OpMoreThan renders a strict greater-than comparison.
	OpMoreThan
	// OpLessThan renders a strict less-than comparison.
	OpLessThan
	// OpBetween renders an inclusive range; it is the only operator
	// with operand arity 2.
	OpBetween
	// OpILike renders a case-insensitive substring match; the operand
	// is wrapped with wildcard markers at parse time.
	OpILike
)

// Operator tokens as they appear in filter keys.
const (
	tokenMoreThan = "more_than"
	tokenLessThan = "less_than"
	tokenBetween  = "between"
	tokenILike    = "i_like"
)

// parseOperator maps a filter-key token onto the operator enum.
func parseOperator(token string) (Operator, bool) {
	switch token {
	case tokenMoreThan:
		return OpMoreThan, true
	case tokenLessThan:
		return OpLessThan, true
	case tokenBetween:
		return OpBetween, true
	case tokenILike:
		return OpILike, true
	default:
		return 0, false
	}
}

// String returns the filter-key token for the operator.
func (op Operator) String() string {
	switch op {
	case OpEquals:
		return "equals"
	case OpMoreThan:
		return tokenMoreThan
	case OpLessThan:
		return tokenLessThan
	case OpBetween:
		return tokenBetween
	case OpILike:
		return tokenILike
	default:
		return fmt.Sprintf("Operator(%d)", int(op))
	}
}

// arity returns the operand arity of the operator.
func (op Operator) arity() int {
	if op == OpBetween {
		return 2
	}
	return 1
}

// renderCondition renders the predicate as a SQL condition on column,
// numbering placeholders from argIndex. It returns the condition, its
// arguments, and the next free placeholder index.
func renderCondition(column string, p Predicate, argIndex int) (string, []interface{}, int, error) {
	if len(p.Operands) != p.Op.arity() {
		return "", nil, 0, &FilterError{
			Key:    p.Field,
			Reason: fmt.Sprintf("operator %s takes %d operand(s), got %d", p.Op, p.Op.arity(), len(p.Operands)),
		}
	}

	switch p.Op {
	case OpEquals:
		return fmt.Sprintf("%s = $%d", column, argIndex),
			[]interface{}{p.Operands[0]}, argIndex + 1, nil
	case OpMoreThan:
		return fmt.Sprintf("%s > $%d", column, argIndex),
			[]interface{}{p.Operands[0]}, argIndex + 1, nil
	case OpLessThan:
		return fmt.Sprintf("%s < $%d", column, argIndex),
			[]interface{}{p.Operands[0]}, argIndex + 1, nil
	case OpBetween:
		return fmt.Sprintf("%s BETWEEN $%d AND $%d", column, argIndex, argIndex+1),
			[]interface{}{p.Operands[0], p.Operands[1]}, argIndex + 2, nil
	case OpILike:
		return fmt.Sprintf("%s ILIKE $%d", column, argIndex),
			[]interface{}{p.Operands[0]}, argIndex + 1, nil
	default:
		// Unreachable: the enum is closed and checked at parse time.
		return "", nil, 0, fmt.Errorf("unhandled operator %d", int(p.Op))
	}
}
