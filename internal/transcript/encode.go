package transcript

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
	FormatText Format = "text"
)

// Formats lists the supported output formats in documentation order.
var Formats = []Format{FormatJSON, FormatSRT, FormatText}

// ParseFormat maps a user-supplied format name to a Format. The empty
// string selects FormatJSON.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatSRT, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json, srt or text)", name)
	}
}

// ContentType is the HTTP media type of the encoded output.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Extension is the file extension used when writing the output to disk.
func (f Format) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}

// Encode serializes seq in the requested format.
func Encode(seq Sequence, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return EncodeStructured(seq)
	case FormatSRT:
		s, err := EncodeSubtitle(seq)
		return []byte(s), err
	case FormatText:
		s, err := EncodePlainText(seq)
		return []byte(s), err
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// EncodeStructured returns seq as a JSON array of {text, start, duration}
// records. Floats keep full precision, so decoding the output reproduces
// the input exactly. An empty sequence encodes as [].
func EncodeStructured(seq Sequence) ([]byte, error) {
	if err := seq.Validate(false); err != nil {
		return nil, err
	}
	if seq == nil {
		seq = Sequence{}
	}
	return json.Marshal(seq)
}

// EncodePlainText returns the text of every segment, one per line, without
// timing. Line breaks inside a segment are flattened to spaces so that the
// line count always equals len(seq).
func EncodePlainText(seq Sequence) (string, error) {
	if err := seq.Validate(true); err != nil {
		return "", err
	}
	lines := make([]string, len(seq))
	for i, seg := range seq {
		lines[i] = singleLine(seg.Text)
	}
	return strings.Join(lines, "\n"), nil
}

// EncodeSubtitle renders seq as SRT: numbered blocks starting at 1, each
// with a start/end timing line, the text and a blank separator line. The
// last block keeps its separator too.
func EncodeSubtitle(seq Sequence) (string, error) {
	if err := seq.Validate(true); err != nil {
		return "", err
	}
	var sb strings.Builder
	for i, seg := range seq {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteByte('\n')
		sb.WriteString(FormatTimestamp(seg.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(seg.End()))
		sb.WriteByte('\n')
		sb.WriteString(singleLine(seg.Text))
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// truncationEpsilon absorbs binary rounding in seconds*1000 so that values
// such as 2.3 land on 2300ms instead of 2299ms.
const truncationEpsilon = 1e-6

// FormatTimestamp converts seconds to HH:MM:SS,mmm, truncating to whole
// milliseconds after adding truncationEpsilon, so a value less than 1ns
// below a millisecond boundary lands on that boundary. Hours grow beyond
// two digits when needed. Values outside [0, MaxSeconds] are clamped;
// Validate rejects them before encoding.
func FormatTimestamp(seconds float64) string {
	var ms int64
	switch {
	case math.IsNaN(seconds) || seconds <= 0:
	case seconds >= MaxSeconds:
		ms = int64(MaxSeconds * 1000)
	default:
		ms = int64(math.Floor(seconds*1000 + truncationEpsilon))
	}
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func singleLine(text string) string {
	return lineBreaks.Replace(text)
}
