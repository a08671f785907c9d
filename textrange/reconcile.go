package textrange

// Reconcile finds where a span starting with prefix really sits in text.
//
// API offsets are counted in a different encoding than the text, so the
// declared range may be shifted by a few positions. Nearby shifts are tried
// first (0, +1, -1, +2, -2, ...) for as long as the probe still overlaps the
// declared range and can still fit inside text. Failing that, every
// occurrence of prefix in text is considered and the one closest to the
// declared range wins; it keeps the declared length and must still fit
// inside text.
func Reconcile(text string, expected Range, prefix string) (Range, bool) {
	return ReconcileRunes([]rune(text), expected, []rune(prefix))
}

// ReconcileRunes is Reconcile over pre-split text.
func ReconcileRunes(text []rune, expected Range, prefix []rune) (Range, bool) {
	// A span longer than the text can never fit, whatever the shift.
	if len(prefix) == 0 || expected.IsEmpty() || expected.Len() > len(text) {
		return Range{}, false
	}
	if r, ok := searchNearby(text, expected, prefix); ok {
		return r, true
	}
	return searchWhole(text, expected, prefix)
}

// searchNearby visits at most 2*expected.Len() probes. Callers guarantee
// expected.Len() <= len(text).
func searchNearby(text []rune, expected Range, prefix []rune) (Range, bool) {
	// Every overlapping probe starts after expected.Start-expected.Len(), so
	// none fits when expected starts at or past the end of text.
	if expected.Start >= len(text) {
		return Range{}, false
	}
	whole := Range{End: len(text)}
	for offset := 0; ; offset = nextOffset(offset) {
		probe := expected.Shift(offset)
		if !probe.Intersects(expected) {
			return Range{}, false
		}
		if !whole.Contains(probe) {
			continue
		}
		if hasPrefixAt(text[:probe.End], probe.Start, prefix) {
			return probe, true
		}
	}
}

// nextOffset walks 0, 1, -1, 2, -2, ...
func nextOffset(offset int) int {
	if offset > 0 {
		return -offset
	}
	return -offset + 1
}

func searchWhole(text []rune, expected Range, prefix []rune) (Range, bool) {
	best := Range{}
	bestDistance := -1
	for i := 0; i+len(prefix) <= len(text); {
		if !hasPrefixAt(text, i, prefix) {
			i++
			continue
		}
		found := New(i, len(prefix))
		if d := found.Distance(expected); bestDistance < 0 || d < bestDistance {
			best, bestDistance = found, d
		}
		i = found.End
	}
	if bestDistance < 0 {
		return Range{}, false
	}
	best = best.WithLen(expected.Len())
	if !(Range{End: len(text)}).Contains(best) {
		return Range{}, false
	}
	return best, true
}

func hasPrefixAt(text []rune, at int, prefix []rune) bool {
	if at < 0 || at+len(prefix) > len(text) {
		return false
	}
	for i, r := range prefix {
		if text[at+i] != r {
			return false
		}
	}
	return true
}
