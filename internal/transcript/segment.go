// Package transcript holds the caption segment model and the pure transforms
// applied to a fetched transcript: the rolling-caption optimizer and the
// output encoders (structured JSON, SRT subtitles, plain text).
//
// Nothing in this package performs I/O or keeps package-level mutable state,
// so every function is safe to call from concurrent requests.
package transcript

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Segment is a single timed caption line.
type Segment struct {
	// Text is the display text of the caption.
	Text string `json:"text"`

	// Start is the offset from the beginning of the video, in seconds.
	Start float64 `json:"start"`

	// Duration is how long the caption stays on screen, in seconds.
	Duration float64 `json:"duration"`
}

// End returns the offset at which the segment stops being displayed.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// Sequence is an ordered transcript, sorted by non-decreasing Start.
type Sequence []Segment

// ErrMalformedSegment is matched by every *MalformedSegmentError.
var ErrMalformedSegment = errors.New("malformed segment")

// MalformedSegmentError reports a segment that cannot be encoded.
type MalformedSegmentError struct {
	Index  int
	Reason string
}

func (e *MalformedSegmentError) Error() string {
	return fmt.Sprintf("malformed segment %d: %s", e.Index, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedSegment) match.
func (e *MalformedSegmentError) Is(target error) bool {
	return target == ErrMalformedSegment
}

// MaxSeconds is the largest time value a segment may carry, about 31,700
// years. Millisecond counts up to it are exact in both float64 and int64.
const MaxSeconds = 1e12

// Validate checks timing on every segment and, when requireText is set,
// that no segment has blank text. Starts must not regress and every start,
// duration and end must lie in [0, MaxSeconds].
func (seq Sequence) Validate(requireText bool) error {
	prevStart := math.Inf(-1)
	for i, seg := range seq {
		if err := checkTime("start", seg.Start); err != nil {
			return &MalformedSegmentError{Index: i, Reason: err.Error()}
		}
		if err := checkTime("duration", seg.Duration); err != nil {
			return &MalformedSegmentError{Index: i, Reason: err.Error()}
		}
		if err := checkTime("end", seg.End()); err != nil {
			return &MalformedSegmentError{Index: i, Reason: err.Error()}
		}
		if seg.Start < prevStart {
			return &MalformedSegmentError{
				Index:  i,
				Reason: fmt.Sprintf("start %g precedes previous start %g", seg.Start, prevStart),
			}
		}
		if requireText && strings.TrimSpace(seg.Text) == "" {
			return &MalformedSegmentError{Index: i, Reason: "empty text"}
		}
		prevStart = seg.Start
	}
	return nil
}

func checkTime(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("%s is not a finite number", field)
	case v < 0:
		return fmt.Errorf("negative %s %g", field, v)
	case v > MaxSeconds:
		return fmt.Errorf("%s %g exceeds %g seconds", field, v, float64(MaxSeconds))
	}
	return nil
}
