package youtube

import "errors"

var (
	// ErrInvalidVideoReference is returned when no video id can be derived
	// from the given URL or id.
	ErrInvalidVideoReference = errors.New("invalid video reference")

	// ErrVideoUnavailable covers removed, private, age-restricted and
	// otherwise unplayable videos.
	ErrVideoUnavailable = errors.New("video unavailable")

	// ErrTranscriptsDisabled means the video has no caption tracks at all.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

	// ErrNoTranscriptFound means caption tracks exist, but none in the
	// configured languages.
	ErrNoTranscriptFound = errors.New("no transcript found for the requested languages")

	// ErrTooManyRequests is returned when YouTube answers with a captcha or
	// a bot check instead of data.
	ErrTooManyRequests = errors.New("youtube is blocking requests from this address")

	// ErrUpstream wraps transport failures and responses that could not be
	// parsed.
	ErrUpstream = errors.New("unexpected response from youtube")
)

// IsTranscriptUnavailable reports whether err means the video exists in some
// form but has no transcript that can be served.
func IsTranscriptUnavailable(err error) bool {
	return errors.Is(err, ErrTranscriptsDisabled) ||
		errors.Is(err, ErrNoTranscriptFound) ||
		errors.Is(err, ErrVideoUnavailable)
}
