package transcript

import (
	"math"
	"strings"
)

// DefaultMinOverlapTokens is the smallest word overlap treated as a rolling
// continuation when no threshold is configured.
const DefaultMinOverlapTokens = 1

// Optimizer collapses the rolling, overlapping segments emitted by
// auto-caption systems into non-redundant ones.
type Optimizer struct {
	// MinOverlapTokens is the shortest boundary word match that merges two
	// segments. Values below 1 are treated as 1.
	MinOverlapTokens int
}

// NewOptimizer returns an Optimizer with the given threshold, falling back
// to DefaultMinOverlapTokens for non-positive values.
func NewOptimizer(minOverlapTokens int) Optimizer {
	if minOverlapTokens < 1 {
		minOverlapTokens = DefaultMinOverlapTokens
	}
	return Optimizer{MinOverlapTokens: minOverlapTokens}
}

// Optimize runs the default Optimizer over seq.
func Optimize(seq Sequence) Sequence {
	return NewOptimizer(DefaultMinOverlapTokens).Optimize(seq)
}

// Optimize returns a new sequence in which continuations and duplicates
// have been folded into the segment they extend. The input is not modified.
//
// Passes repeat until one merges nothing, so the result is a fixed point
// and optimizing it again returns it unchanged. Every merge removes a
// segment, which bounds the number of passes by len(seq).
func (o Optimizer) Optimize(seq Sequence) Sequence {
	out := o.pass(seq)
	for len(out) < len(seq) {
		seq = out
		out = o.pass(seq)
	}
	return out
}

func (o Optimizer) pass(seq Sequence) Sequence {
	out := make(Sequence, 0, len(seq))
	for _, seg := range seq {
		if n := len(out); n > 0 {
			if merged, ok := o.merge(out[n-1], seg); ok {
				out[n-1] = merged
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}

// merge folds next into cur when next repeats cur or continues it.
func (o Optimizer) merge(cur, next Segment) (Segment, bool) {
	curText := strings.TrimSpace(cur.Text)
	nextText := strings.TrimSpace(next.Text)

	text := cur.Text
	if curText != nextText {
		k := Overlap(curText, nextText, o.MinOverlapTokens)
		if k == 0 {
			return Segment{}, false
		}
		if rest := textAfterTokens(nextText, k); rest != "" {
			text = curText + " " + rest
		}
	}

	start := math.Min(cur.Start, next.Start)
	end := math.Max(cur.End(), next.End())
	duration := cur.Duration
	if start != cur.Start || end != cur.End() {
		duration = end - start
	}
	return Segment{Text: text, Start: start, Duration: duration}, true
}
