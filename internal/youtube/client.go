// Package youtube fetches caption tracks for YouTube videos. It is the
// caption supplier behind the transcript endpoint: it resolves a video id to
// its caption tracks through the innertube player API, picks a track for the
// configured languages and parses the timedtext XML into a transcript.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"transcript-api/internal/transcript"
)

const (
	// DefaultBaseURL is the YouTube origin used for all requests.
	DefaultBaseURL = "https://www.youtube.com"

	// DefaultTimeout bounds each upstream request.
	DefaultTimeout = 15 * time.Second

	defaultUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"
)

var (
	apiKeyPattern  = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	consentPattern = regexp.MustCompile(`name="v" value="(.*?)"`)
)

// Client talks to YouTube over fiber's fasthttp-backed HTTP client.
type Client struct {
	http      *fiber.Client
	baseURL   string
	languages []string
	timeout   time.Duration
	log       *logrus.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another origin, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithLanguages sets the preferred caption languages, most preferred first.
func WithLanguages(languages ...string) Option {
	return func(c *Client) {
		if len(languages) > 0 {
			c.languages = languages
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Client. Without options it queries youtube.com for English
// captions.
func New(opts ...Option) *Client {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	c := &Client{
		http: &fiber.Client{
			UserAgent:   defaultUserAgent,
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
		baseURL:   DefaultBaseURL,
		languages: []string{"en"},
		timeout:   DefaultTimeout,
		log:       quiet,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Languages returns the preferred caption languages.
func (c *Client) Languages() []string {
	return append([]string(nil), c.languages...)
}

// FetchTranscript returns the transcript of the best matching caption track:
// the first configured language wins, and within a language a manually
// created track is preferred over an auto-generated one.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) (transcript.Sequence, error) {
	tracks, err := c.ListTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	track, err := SelectTrack(tracks, c.languages)
	if err != nil {
		return nil, err
	}

	seq, err := c.FetchTrack(ctx, track)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"video_id":  videoID,
		"language":  track.LanguageCode,
		"generated": track.Generated,
		"segments":  len(seq),
	}).Debug("Fetched caption track")
	return seq, nil
}

// ListTracks returns every caption track YouTube offers for the video.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	if !IsVideoID(videoID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoReference, videoID)
	}
	apiKey, err := c.fetchAPIKey(ctx, videoID)
	if err != nil {
		return nil, err
	}
	player, err := c.fetchPlayer(ctx, videoID, apiKey)
	if err != nil {
		return nil, err
	}
	return player.tracks(videoID)
}

// FetchTrack downloads and parses a single caption track.
func (c *Client) FetchTrack(ctx context.Context, track Track) (transcript.Sequence, error) {
	a := c.http.Get(strings.Replace(track.BaseURL, "&fmt=srv3", "", 1))
	code, body, err := c.send(ctx, a)
	if err != nil {
		return nil, err
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("%w: timedtext returned status %d", ErrUpstream, code)
	}
	return parseTimedText(body)
}

func (c *Client) fetchAPIKey(ctx context.Context, videoID string) (string, error) {
	html, err := c.fetchWatchPage(ctx, videoID, "")
	if err != nil {
		return "", err
	}
	if strings.Contains(html, `action="https://consent.youtube.com/s"`) {
		m := consentPattern.FindStringSubmatch(html)
		if m == nil {
			return "", fmt.Errorf("%w: consent page without a consent token", ErrUpstream)
		}
		c.log.WithField("video_id", videoID).Debug("Accepting YouTube consent page")
		if html, err = c.fetchWatchPage(ctx, videoID, "YES+"+m[1]); err != nil {
			return "", err
		}
	}

	if m := apiKeyPattern.FindStringSubmatch(html); m != nil {
		return m[1], nil
	}
	if strings.Contains(html, `class="g-recaptcha"`) {
		return "", ErrTooManyRequests
	}
	return "", fmt.Errorf("%w: innertube api key not found on watch page", ErrUpstream)
}

func (c *Client) fetchWatchPage(ctx context.Context, videoID, consent string) (string, error) {
	a := c.http.Get(c.baseURL + "/watch?v=" + url.QueryEscape(videoID))
	a.Set(fiber.HeaderAcceptLanguage, "en-US")
	if consent != "" {
		a.Cookie("CONSENT", consent)
	}

	code, body, err := c.send(ctx, a)
	if err != nil {
		return "", err
	}
	switch {
	case code == fiber.StatusTooManyRequests:
		return "", ErrTooManyRequests
	case code != fiber.StatusOK:
		return "", fmt.Errorf("%w: watch page returned status %d", ErrUpstream, code)
	}
	return string(body), nil
}

func (c *Client) fetchPlayer(ctx context.Context, videoID, apiKey string) (*playerResponse, error) {
	payload := playerRequest{VideoID: videoID}
	payload.Context.Client.ClientName = innertubeClientName
	payload.Context.Client.ClientVersion = innertubeClientVersion

	a := c.http.Post(c.baseURL + "/youtubei/v1/player?key=" + url.QueryEscape(apiKey))
	a.Set(fiber.HeaderAcceptLanguage, "en-US")
	a.JSON(payload)

	code, body, err := c.send(ctx, a)
	if err != nil {
		return nil, err
	}
	switch {
	case code == fiber.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	case code != fiber.StatusOK:
		return nil, fmt.Errorf("%w: player endpoint returned status %d", ErrUpstream, code)
	}

	var player playerResponse
	if err := json.Unmarshal(body, &player); err != nil {
		return nil, fmt.Errorf("%w: decode player response: %v", ErrUpstream, err)
	}
	return &player, nil
}

// send runs the request with the client timeout, shortened to the context
// deadline when that comes first. fasthttp cannot abort a request in
// flight, so cancellation returns ctx.Err() at once and leaves the request
// to finish in the background within its timeout. The agent is always
// released.
func (c *Client) send(ctx context.Context, a *fiber.Agent) (int, []byte, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil || timeout <= 0 {
		fiber.ReleaseAgent(a)
		if err == nil {
			err = context.DeadlineExceeded
		}
		return 0, nil, err
	}

	a.Timeout(timeout)
	type response struct {
		code int
		body []byte
		errs []error
	}
	done := make(chan response, 1)
	go func() {
		code, body, errs := a.Bytes()
		done <- response{code, body, errs}
	}()

	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case r := <-done:
		if len(r.errs) > 0 {
			return 0, nil, fmt.Errorf("%w: %w", ErrUpstream, errors.Join(r.errs...))
		}
		return r.code, r.body, nil
	}
}
