package textrange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"same", New(2, 3), New(2, 3), true},
		{"overlap left", New(0, 3), New(2, 3), true},
		{"overlap right", New(4, 3), New(2, 3), true},
		{"inside", New(1, 10), New(3, 2), true},
		{"touching", New(0, 2), New(2, 2), false},
		{"apart", New(0, 2), New(5, 2), false},
		{"empty", New(3, 0), New(0, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a))
		})
	}
}

func TestRangeDistance(t *testing.T) {
	assert.Equal(t, 0, New(2, 3).Distance(New(4, 3)))
	assert.Equal(t, 0, New(0, 2).Distance(New(2, 2)))
	assert.Equal(t, 3, New(0, 2).Distance(New(5, 2)))
	assert.Equal(t, 3, New(5, 2).Distance(New(0, 2)))
}

func TestRangeContains(t *testing.T) {
	outer := New(0, 10)
	assert.True(t, outer.Contains(New(0, 10)))
	assert.True(t, outer.Contains(New(3, 2)))
	assert.False(t, outer.Contains(New(8, 3)))
	assert.False(t, outer.Contains(New(-1, 2)))
}

func TestRangeHelpers(t *testing.T) {
	r := New(2, 3)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, Range{Start: 4, End: 7}, r.Shift(2))
	assert.Equal(t, Range{Start: 2, End: 3}, r.WithLen(1))
	assert.Equal(t, "llo", r.Slice([]rune("hello")))
	assert.Equal(t, "[2,5)", r.String())
}

func TestNextOffsetOrder(t *testing.T) {
	var got []int
	offset := 0
	for range 7 {
		got = append(got, offset)
		offset = nextOffset(offset)
	}
	assert.Equal(t, []int{0, 1, -1, 2, -2, 3, -3}, got)
}
