package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters_Predicates(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected Predicate
	}{
		{
			name:     "two segments is implicit equality",
			key:      "where__id",
			value:    "3",
			expected: Predicate{Field: "id", Op: OpEquals, Operands: []string{"3"}},
		},
		{
			name:     "more_than",
			key:      "where__likeCount__more_than",
			value:    "10",
			expected: Predicate{Field: "likeCount", Op: OpMoreThan, Operands: []string{"10"}},
		},
		{
			name:     "less_than",
			key:      "where__id__less_than",
			value:    "100",
			expected: Predicate{Field: "id", Op: OpLessThan, Operands: []string{"100"}},
		},
		{
			name:     "between splits the value into a pair",
			key:      "where__id__between",
			value:    "3,7",
			expected: Predicate{Field: "id", Op: OpBetween, Operands: []string{"3", "7"}},
		},
		{
			name:     "i_like wraps the operand with wildcards",
			key:      "where__title__i_like",
			value:    "hello",
			expected: Predicate{Field: "title", Op: OpILike, Operands: []string{"%hello%"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predicates, sorts, err := ParseFilters(url.Values{tt.key: {tt.value}})
			require.NoError(t, err)
			require.Len(t, predicates, 1)
			assert.Empty(t, sorts)
			assert.Equal(t, tt.expected, predicates[0])
		})
	}
}

func TestParseFilters_Sorts(t *testing.T) {
	predicates, sorts, err := ParseFilters(url.Values{"order__createdAt": {"DESC"}})
	require.NoError(t, err)
	assert.Empty(t, predicates)
	require.Len(t, sorts, 1)
	assert.Equal(t, Sort{Field: "createdAt", Direction: Desc}, sorts[0])

	// Lower-case directions are accepted.
	_, sorts, err = ParseFilters(url.Values{"order__createdAt": {"asc"}})
	require.NoError(t, err)
	assert.Equal(t, Asc, sorts[0].Direction)
}

func TestParseFilters_MalformedKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "single segment", key: "where"},
		{name: "four segments", key: "where__id__more_than__extra"},
		{name: "bare order namespace", key: "order"},
		{name: "order with operator", key: "order__createdAt__more_than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseFilters(url.Values{tt.key: {"1"}})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadFilter)

			var filterErr *FilterError
			require.ErrorAs(t, err, &filterErr)
			assert.Equal(t, tt.key, filterErr.Key)
		})
	}
}

func TestParseFilters_UnknownOperator(t *testing.T) {
	_, _, err := ParseFilters(url.Values{"where__id__not_equal": {"1"}})
	assert.ErrorIs(t, err, ErrBadFilter)
}

func TestParseFilters_BetweenArity(t *testing.T) {
	for _, value := range []string{"3", "3,4,5"} {
		_, _, err := ParseFilters(url.Values{"where__id__between": {value}})
		assert.ErrorIs(t, err, ErrBadFilter, "value %q", value)
	}
}

func TestParseFilters_InvalidDirection(t *testing.T) {
	_, _, err := ParseFilters(url.Values{"order__createdAt": {"sideways"}})
	assert.ErrorIs(t, err, ErrBadFilter)
}

func TestParseFilters_IgnoresOtherNamespaces(t *testing.T) {
	predicates, sorts, err := ParseFilters(url.Values{
		"page":     {"1"},
		"take":     {"20"},
		"whatever": {"x"},
	})
	require.NoError(t, err)
	assert.Empty(t, predicates)
	assert.Empty(t, sorts)
}

func TestParseFilters_StableOrder(t *testing.T) {
	values := url.Values{
		"where__title__i_like":   {"go"},
		"where__id__more_than":   {"1"},
		"where__likeCount":       {"5"},
		"where__content__i_like": {"x"},
	}
	first, _, err := ParseFilters(values)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, _, err := ParseFilters(values)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
