package twitter

import (
	"encoding/json"
	"net/url"
	"strings"
	"sync"
)

// CursorState holds the (MinID, MaxID) pair of a request.
// The pair is always read and written as a whole under one lock, so a reader
// never sees MinID from one response next to MaxID from another.
type CursorState struct {
	mu   sync.Mutex
	pair Cursor
}

// Snapshot returns the current pair.
func (s *CursorState) Snapshot() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

// Capture records the cursor reported by one response. MaxID is replaced;
// MinID is replaced only when the response names an older page.
// Concurrent captures are last-write-wins.
func (s *CursorState) Capture(meta Cursor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair.MaxID = meta.MaxID
	if meta.MinID != "" {
		s.pair.MinID = meta.MinID
	}
}

// ParseSearchMetadata reads the pagination cursor from a search response.
// MaxID comes from search_metadata.max_id_str; MinID is the max_id parameter
// of the search_metadata.next_results query string. It returns false when
// the payload carries no search_metadata object.
func ParseSearchMetadata(body []byte) (Cursor, bool) {
	var raw struct {
		SearchMetadata *struct {
			MaxIDStr    json.RawMessage `json:"max_id_str"`
			NextResults json.RawMessage `json:"next_results"`
		} `json:"search_metadata"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || raw.SearchMetadata == nil {
		return Cursor{}, false
	}

	var c Cursor
	if s, err := stringField("search_metadata", "max_id_str", raw.SearchMetadata.MaxIDStr); err == nil {
		c.MaxID = s
	}
	if s, err := stringField("search_metadata", "next_results", raw.SearchMetadata.NextResults); err == nil {
		c.MinID = nextMaxID(s)
	}
	return c, true
}

// nextMaxID extracts max_id from a query string like "?max_id=123&q=go".
func nextMaxID(nextResults string) string {
	// ParseQuery keeps every well-formed pair even when another one is bad.
	values, _ := url.ParseQuery(strings.TrimPrefix(nextResults, "?"))
	return values.Get(ParamMaxID)
}
