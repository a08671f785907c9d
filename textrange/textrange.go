// Package textrange locates annotated spans inside post text.
//
// Ranges are half-open and count Unicode code points, not bytes.
package textrange

import "fmt"

// Range is a half-open [Start, End) span of rune indices.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// New returns the range starting at start with the given length.
func New(start, length int) Range {
	return Range{Start: start, End: start + length}
}

// Len returns the number of runes covered.
func (r Range) Len() int { return r.End - r.Start }

// IsEmpty reports whether the range covers nothing.
func (r Range) IsEmpty() bool { return r.End <= r.Start }

// Contains reports whether other lies entirely inside r.
func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Intersects reports whether r and other share at least one index.
func (r Range) Intersects(other Range) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.Start < other.End && other.Start < r.End
}

// Distance is 0 for intersecting ranges, otherwise the gap between the nearer ends.
func (r Range) Distance(other Range) int {
	if r.Intersects(other) {
		return 0
	}
	if r.End <= other.Start {
		return other.Start - r.End
	}
	return r.Start - other.End
}

// Shift moves the range by n runes.
func (r Range) Shift(n int) Range {
	return Range{Start: r.Start + n, End: r.End + n}
}

// WithLen keeps Start and sets the length.
func (r Range) WithLen(n int) Range {
	return Range{Start: r.Start, End: r.Start + n}
}

// Slice returns the runes of text covered by r. r must lie inside text.
func (r Range) Slice(text []rune) string {
	return string(text[r.Start:r.End])
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
