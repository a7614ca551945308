package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

// nextURL synthesizes the next-page URL for a full cursor page. It
// re-serializes every original query parameter except the cursor bounds
// onto the collection path, then adds exactly one bound parameter set to
// the last returned id: where__id__more_than for ascending order,
// where__id__less_than for descending.
func (e *Engine) nextURL(path string, req *Request, lastID int64) *string {
	if e.baseURL == nil {
		return nil
	}

	next := *e.baseURL
	next.Path = strings.TrimRight(next.Path, "/") + "/" + strings.TrimLeft(path, "/")

	query := url.Values{}
	for key, vs := range req.values {
		if key == keyAfterID || key == keyBeforeID {
			continue
		}
		// Empty values round-trip too, so the next URL carries the
		// request's query verbatim minus the cursor bounds.
		for _, v := range vs {
			query.Add(key, v)
		}
	}

	boundKey := keyAfterID
	if req.Order == Desc {
		boundKey = keyBeforeID
	}
	query.Set(boundKey, strconv.FormatInt(lastID, 10))

	next.RawQuery = query.Encode()
	s := next.String()
	return &s
}
