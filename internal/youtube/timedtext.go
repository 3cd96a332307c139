package youtube

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"transcript-api/internal/transcript"
)

var markupPattern = regexp.MustCompile(`<[^>]*>`)

type timedTextDoc struct {
	Texts []timedTextEntry `xml:"text"`
}

type timedTextEntry struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

// parseTimedText converts a timedtext XML document into a transcript sorted
// by start time. YouTube escapes entities twice, so the element text is
// unescaped once more after XML decoding; formatting tags are dropped and
// line breaks become spaces. Entries without text are skipped.
func parseTimedText(data []byte) (transcript.Sequence, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode timedtext: %v", ErrUpstream, err)
	}

	seq := make(transcript.Sequence, 0, len(doc.Texts))
	for i, entry := range doc.Texts {
		text := markupPattern.ReplaceAllString(html.UnescapeString(entry.Body), "")
		text = strings.Join(strings.FieldsFunc(text, isLineBreak), " ")
		if strings.TrimSpace(text) == "" {
			continue
		}

		start, err := parseSeconds(entry.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d start: %v", ErrUpstream, i, err)
		}
		dur, err := parseSeconds(entry.Dur)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d dur: %v", ErrUpstream, i, err)
		}
		seq = append(seq, transcript.Segment{Text: text, Start: start, Duration: dur})
	}

	sort.SliceStable(seq, func(i, j int) bool { return seq[i].Start < seq[j].Start })
	return seq, nil
}

func parseSeconds(v string) (float64, error) {
	if v = strings.TrimSpace(v); v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}
