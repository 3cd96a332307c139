package models

import "strings"

// TranscriptQuery holds the query parameters of GET /api/transcript.
type TranscriptQuery struct {
	URL      string `query:"url" validate:"required"`
	Format   string `query:"format" validate:"omitempty,oneof=json srt text"`
	Optimize bool   `query:"optimize"`
}

// Normalize trims the video reference and lower-cases the format name.
func (q *TranscriptQuery) Normalize() {
	q.URL = strings.TrimSpace(q.URL)
	q.Format = strings.ToLower(strings.TrimSpace(q.Format))
}

// TrackQuery holds the query parameters of GET /api/tracks.
type TrackQuery struct {
	URL string `query:"url" validate:"required"`
}
