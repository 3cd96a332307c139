package transcript

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Overlap reports how many leading words of next repeat the trailing words
// of prev, which is how auto-generated captions roll forward. The longest
// boundary match wins; matches shorter than minTokens count as no overlap
// and yield 0. Words compare case-folded with surrounding punctuation
// ignored. Repetitions that are not at the boundary never match.
func Overlap(prev, next string, minTokens int) int {
	if minTokens < 1 {
		minTokens = 1
	}
	a := normalizedTokens(prev)
	b := normalizedTokens(next)

	for k := min(len(a), len(b)); k >= minTokens; k-- {
		if equalTokens(a[len(a)-k:], b[:k]) {
			return k
		}
	}
	return 0
}

// A cases.Caser is stateful, so each call gets its own.
func normalizedTokens(s string) []string {
	fold := cases.Fold()
	fields := strings.Fields(s)
	out := make([]string, len(fields))
	for i, f := range fields {
		trimmed := strings.TrimFunc(f, isPunctOrSymbol)
		if trimmed == "" {
			trimmed = f
		}
		out[i] = fold.String(trimmed)
	}
	return out
}

func isPunctOrSymbol(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// textAfterTokens returns s with its first n whitespace-separated words
// removed, keeping the spacing of what remains.
func textAfterTokens(s string, n int) string {
	rest := strings.TrimSpace(s)
	for i := 0; i < n && rest != ""; i++ {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return rest
}
