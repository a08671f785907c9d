package textrange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileExactRange(t *testing.T) {
	text := "see #AB tag"
	want := New(4, 3)

	got, ok := Reconcile(text, want, "#AB")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, "#AB", got.Slice([]rune(text)))
}

func TestReconcileSkewedOffsets(t *testing.T) {
	text := "see #AB tag"
	truth := New(4, 3)

	for _, skew := range []int{-2, -1, 1, 2} {
		got, ok := Reconcile(text, truth.Shift(skew), "#")
		require.True(t, ok, "skew %d", skew)
		assert.Equal(t, truth, got, "skew %d", skew)
	}
}

func TestReconcileEmojiShift(t *testing.T) {
	// Offsets counted in UTF-16 land two units right of the rune position
	// after a pair of astral characters.
	text := "😀😀 hi #go rocks"
	runes := []rune(text)
	truth := New(6, 3)
	require.Equal(t, "#go", truth.Slice(runes))

	got, ok := Reconcile(text, New(8, 3), "#go")
	require.True(t, ok)
	assert.Equal(t, truth, got)
}

func TestReconcilePrefersCloserOffset(t *testing.T) {
	// Both +1 and -1 hold a '#'; +1 is probed first.
	text := "#a#b#c"
	got, ok := Reconcile(text, New(1, 2), "#")
	require.True(t, ok)
	assert.Equal(t, New(2, 2), got)
}

func TestReconcileGlobalFallback(t *testing.T) {
	text := "nothing here, but later @someone says hi"
	at := len([]rune("nothing here, but later "))

	got, ok := Reconcile(text, New(0, 8), "@someone")
	require.True(t, ok)
	assert.Equal(t, New(at, 8), got)
}

func TestReconcileGlobalFallbackNearest(t *testing.T) {
	text := "#x far away text here then #x"
	expected := New(20, 2)

	got, ok := Reconcile(text, expected, "#x")
	require.True(t, ok)
	assert.Equal(t, New(27, 2), got)
}

func TestReconcileGlobalFallbackTieTakesFirst(t *testing.T) {
	text := "#q.........#q"
	// Expected sits exactly between both occurrences and overlaps neither.
	expected := New(6, 1)

	got, ok := Reconcile(text, expected, "#q")
	require.True(t, ok)
	assert.Equal(t, New(0, 1), got)
}

func TestReconcileForcedLengthOutOfBounds(t *testing.T) {
	text := "ends with #x"
	_, ok := Reconcile(text, New(0, 5), "#x")
	assert.False(t, ok)
}

func TestReconcileNoOccurrence(t *testing.T) {
	_, ok := Reconcile("plain text", New(2, 3), "#")
	assert.False(t, ok)
}

func TestReconcileRejectsEmptyInput(t *testing.T) {
	_, ok := Reconcile("#a", New(0, 2), "")
	assert.False(t, ok)
	_, ok = Reconcile("#a", New(1, 0), "#")
	assert.False(t, ok)
}

func TestReconcileResultAlwaysInsideText(t *testing.T) {
	texts := []string{
		"#one #two http://x.co @me",
		"ümlaut #tag and @user",
		"🎉🎉🎉 @party https://t.co/abc #fun",
	}
	prefixes := []string{"#", "@", "http"}
	for _, text := range texts {
		runes := []rune(text)
		for _, prefix := range prefixes {
			for start := -3; start < len(runes)+3; start++ {
				for length := 1; length < 8; length++ {
					got, ok := Reconcile(text, New(start, length), prefix)
					if !ok {
						continue
					}
					require.GreaterOrEqual(t, got.Start, 0)
					require.Less(t, got.Start, got.End)
					require.LessOrEqual(t, got.End, len(runes))
					require.Equal(t, length, got.Len())
					require.True(t, hasPrefixAt(runes, got.Start, []rune(prefix)))
				}
			}
		}
	}
}

func TestReconcileDeclaredRangeBeyondText(t *testing.T) {
	text := "see #AB tag"
	tests := []struct {
		name     string
		expected Range
	}{
		{"longer than text", Range{Start: 0, End: 1 << 40}},
		{"int64 sized end", Range{Start: 0, End: 9000000000000000000}},
		{"starts past end", Range{Start: 1 << 40, End: 1<<40 + 3}},
		{"huge span after prefix", Range{Start: 4, End: 1 << 62}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan bool, 1)
			go func() {
				_, ok := Reconcile(text, tt.expected, "#AB")
				done <- ok
			}()
			select {
			case ok := <-done:
				assert.False(t, ok)
			case <-time.After(time.Second):
				t.Fatal("reconcile did not return")
			}
		})
	}
}

func TestReconcileRangeStartingNearEnd(t *testing.T) {
	// Declared start is inside the text, so nearby probes still apply.
	text := "tail #x"
	got, ok := Reconcile(text, New(6, 2), "#x")
	require.True(t, ok)
	assert.Equal(t, New(5, 2), got)
}
