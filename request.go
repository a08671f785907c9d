package twitter

import (
	"fmt"
	"maps"
	"strconv"
)

// Request is an immutable API request plus the pagination cursor captured
// from its most recent response.
//
// Parameters never change after construction; RequestForOlder and
// RequestForNewer derive new requests. Callers that issue several fetches
// and only care about the latest should compare request pointers when the
// results arrive and drop stale ones.
type Request struct {
	endpoint string
	params   map[string]string
	cursor   *CursorState
}

// NewRequest creates a request for an endpoint path such as "search/tweets".
// params is copied.
func NewRequest(endpoint string, params map[string]string) *Request {
	p := make(map[string]string, len(params))
	maps.Copy(p, params)
	return &Request{endpoint: endpoint, params: p, cursor: &CursorState{}}
}

// SearchOption customizes a search request.
type SearchOption func(params map[string]string)

// WithCount bounds the number of results per page. Non-positive counts are ignored.
func WithCount(n int) SearchOption {
	return func(params map[string]string) {
		if n > 0 {
			params[ParamCount] = strconv.Itoa(n)
		}
	}
}

// WithResultType selects recent or popular results.
func WithResultType(rt ResultType) SearchOption {
	return func(params map[string]string) {
		if rt != "" {
			params[ParamResultType] = string(rt)
		}
	}
}

// WithGeocode restricts results to a radius around a point.
func WithGeocode(lat, lng, radiusKm float64) SearchOption {
	return func(params map[string]string) {
		params[ParamGeocode] = fmt.Sprintf("%g,%g,%gkm", lat, lng, radiusKm)
	}
}

// NewSearchRequest creates a search/tweets request for query.
func NewSearchRequest(query string, opts ...SearchOption) *Request {
	params := map[string]string{ParamQuery: query}
	for _, opt := range opts {
		opt(params)
	}
	return NewRequest(SearchTweets, params)
}

// Endpoint returns the endpoint path.
func (r *Request) Endpoint() string { return r.endpoint }

// Params returns a copy of the request parameters.
func (r *Request) Params() map[string]string {
	return maps.Clone(r.params)
}

// Param returns a single parameter.
func (r *Request) Param(key string) (string, bool) {
	v, ok := r.params[key]
	return v, ok
}

// Cursor returns the cursor captured from the latest response.
func (r *Request) Cursor() Cursor {
	return r.cursor.Snapshot()
}

// RequestForOlder returns the request for the page before the latest
// response. If no response has told us where that page starts, a request
// that already pages by max_id is returned unchanged; otherwise there is no
// older page to ask for.
func (r *Request) RequestForOlder() (*Request, bool) {
	c := r.cursor.Snapshot()
	if c.MinID != "" {
		return r.modified(map[string]string{ParamMaxID: c.MinID}, false), true
	}
	if _, ok := r.params[ParamMaxID]; ok {
		return r, true
	}
	return nil, false
}

// RequestForNewer returns the request for results newer than the latest
// response. Newer pages are not bounded by count.
func (r *Request) RequestForNewer() (*Request, bool) {
	c := r.cursor.Snapshot()
	if c.MaxID != "" {
		return r.modified(map[string]string{ParamSinceID: c.MaxID}, true), true
	}
	if _, ok := r.params[ParamSinceID]; ok {
		return r, true
	}
	return nil, false
}

func (r *Request) modified(changes map[string]string, clearCount bool) *Request {
	p := maps.Clone(r.params)
	maps.Copy(p, changes)
	if clearCount {
		delete(p, ParamCount)
	}
	return NewRequest(r.endpoint, p)
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %v", r.endpoint, r.params)
}
