package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_Defaults(t *testing.T) {
	req, err := ParseRequest(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 0, req.Page)
	assert.Equal(t, DefaultTake, req.Take)
	assert.Zero(t, req.AfterID)
	assert.Zero(t, req.BeforeID)
	assert.Equal(t, Asc, req.Order)
	require.Len(t, req.Sorts, 1)
	assert.Equal(t, Sort{Field: "createdAt", Direction: Asc}, req.Sorts[0])
}

func TestParseRequest_PageMode(t *testing.T) {
	req, err := ParseRequest(url.Values{"page": {"2"}, "take": {"10"}})
	require.NoError(t, err)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 10, req.Take)
}

func TestParseRequest_OrderDirectionDrivesCursor(t *testing.T) {
	req, err := ParseRequest(url.Values{"order__createdAt": {"DESC"}})
	require.NoError(t, err)
	assert.Equal(t, Desc, req.Order)
}

func TestParseRequest_CursorBounds(t *testing.T) {
	req, err := ParseRequest(url.Values{"where__id__more_than": {"42"}})
	require.NoError(t, err)
	assert.Equal(t, int64(42), req.AfterID)
	// The bound is a pagination scalar, not a parsed predicate.
	assert.Empty(t, req.Filters)

	req, err = ParseRequest(url.Values{"where__id__less_than": {"42"}})
	require.NoError(t, err)
	assert.Equal(t, int64(42), req.BeforeID)
}

func TestParseRequest_BothBoundsRejected(t *testing.T) {
	_, err := ParseRequest(url.Values{
		"where__id__more_than": {"1"},
		"where__id__less_than": {"9"},
	})
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestParseRequest_BadArguments(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
	}{
		{name: "non-numeric page", values: url.Values{"page": {"abc"}}},
		{name: "zero page", values: url.Values{"page": {"0"}}},
		{name: "negative take", values: url.Values{"take": {"-5"}}},
		{name: "zero take", values: url.Values{"take": {"0"}}},
		{name: "non-numeric take", values: url.Values{"take": {"ten"}}},
		{name: "non-numeric bound", values: url.Values{"where__id__more_than": {"abc"}}},
		{name: "negative bound", values: url.Values{"where__id__less_than": {"-3"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(tt.values)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadArgument)
		})
	}
}

func TestParseRequest_FiltersFlowThrough(t *testing.T) {
	req, err := ParseRequest(url.Values{
		"where__title__i_like": {"go"},
		"where__authorId":      {"7"},
	})
	require.NoError(t, err)
	require.Len(t, req.Filters, 2)

	// Malformed filter keys fail the whole request.
	_, err = ParseRequest(url.Values{"where__a__b__c": {"1"}})
	assert.ErrorIs(t, err, ErrBadFilter)
}
