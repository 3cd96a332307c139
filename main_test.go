package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"transcript-api/config"
	"transcript-api/handlers"
	"transcript-api/internal/transcript"
	"transcript-api/internal/youtube"
)

type stubSupplier struct {
	transcripts map[string]transcript.Sequence
	tracks      []youtube.Track
}

func (s *stubSupplier) FetchTranscript(_ context.Context, videoID string) (transcript.Sequence, error) {
	seq, ok := s.transcripts[videoID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", youtube.ErrTranscriptsDisabled, videoID)
	}
	return seq, nil
}

func (s *stubSupplier) ListTracks(context.Context, string) ([]youtube.Track, error) {
	return s.tracks, nil
}

func (s *stubSupplier) Languages() []string { return []string{"en"} }

var sampleTranscript = transcript.Sequence{
	{Text: "hello", Start: 0, Duration: 1.5},
	{Text: "world", Start: 1.5, Duration: 2.0},
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvConfigPath, "PORT", "GRPC_HEALTH_PORT", "PUBLIC_URL", "LOG_LEVEL", "LOG_FORMAT", "YOUTUBE_LANGUAGES"} {
		t.Setenv(key, "")
	}
}

func runCLI(t *testing.T, supplier handlers.TranscriptSupplier, stdin string, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)

	factory := func(*config.Config, *logrus.Logger) handlers.TranscriptSupplier { return supplier }
	cmd := buildRootCommand(factory)

	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestConvertCommand(t *testing.T) {
	input := `[{"text":"going to give","start":10,"duration":1.5},{"text":"give you up","start":11,"duration":2}]`

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "json passthrough",
			args: []string{"convert"},
			want: `[{"text":"going to give","start":10,"duration":1.5},{"text":"give you up","start":11,"duration":2}]`,
		},
		{
			name: "srt",
			args: []string{"convert", "--format", "srt"},
			want: "1\n00:00:10,000 --> 00:00:11,500\ngoing to give\n\n2\n00:00:11,000 --> 00:00:13,000\ngive you up\n\n",
		},
		{
			name: "optimized srt",
			args: []string{"convert", "-f", "srt", "--optimize"},
			want: "1\n00:00:10,000 --> 00:00:13,000\ngoing to give you up\n\n",
		},
		{
			name: "stdin dash",
			args: []string{"convert", "--format", "text", "-"},
			want: "going to give\ngive you up",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, &stubSupplier{}, input, tt.args...)
			if err != nil {
				t.Fatalf("convert error = %v", err)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestConvertCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.json")
	if err := os.WriteFile(path, []byte(`[{"text":"hello world","start":0,"duration":1.5}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, &stubSupplier{}, "", "convert", "--format", "srt", path)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if want := "1\n00:00:00,000 --> 00:00:01,500\nhello world\n\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestConvertCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  error
	}{
		{"malformed segment", `[{"text":"x","start":-1.0,"duration":1}]`, []string{"convert", "-f", "srt"}, transcript.ErrMalformedSegment},
		{"bad format", `[]`, []string{"convert", "-f", "vtt"}, nil},
		{"not json", `hello`, []string{"convert"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, &stubSupplier{}, tt.stdin, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFetchCommandSingle(t *testing.T) {
	supplier := &stubSupplier{transcripts: map[string]transcript.Sequence{"dQw4w9WgXcQ": sampleTranscript}}

	stdout, _, err := runCLI(t, supplier, "", "fetch", "--format", "text", "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}
	if stdout != "hello\nworld" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestFetchCommandMany(t *testing.T) {
	supplier := &stubSupplier{transcripts: map[string]transcript.Sequence{
		"aaaaaaaaaaa": sampleTranscript,
		"bbbbbbbbbbb": sampleTranscript[:1],
	}}
	dir := filepath.Join(t.TempDir(), "out")

	stdout, stderr, err := runCLI(t, supplier, "",
		"fetch", "--format", "srt", "--workers", "2", "--out-dir", dir,
		"aaaaaaaaaaa", "https://www.youtube.com/watch?v=bbbbbbbbbbb", "ccccccccccc", "aaaaaaaaaaa")
	if err == nil || !strings.Contains(err.Error(), "1 of 3 transcripts failed") {
		t.Fatalf("fetch error = %v", err)
	}
	if !strings.Contains(stderr, "ccccccccccc") {
		t.Errorf("stderr = %q, want the failed id", stderr)
	}

	lines := strings.Fields(stdout)
	sort.Strings(lines)
	want := []string{filepath.Join(dir, "aaaaaaaaaaa.srt"), filepath.Join(dir, "bbbbbbbbbbb.srt")}
	if strings.Join(lines, ",") != strings.Join(want, ",") {
		t.Errorf("written = %v, want %v", lines, want)
	}

	got, err := os.ReadFile(filepath.Join(dir, "bbbbbbbbbbb.srt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "1\n00:00:00,000 --> 00:00:01,500\nhello\n\n" {
		t.Errorf("bbbbbbbbbbb.srt = %q", got)
	}
}

func TestFetchCommandRejectsBadReference(t *testing.T) {
	_, _, err := runCLI(t, &stubSupplier{}, "", "fetch", "https://example.com/nope")
	if !errors.Is(err, youtube.ErrInvalidVideoReference) {
		t.Errorf("error = %v, want ErrInvalidVideoReference", err)
	}
}

func TestTracksCommand(t *testing.T) {
	supplier := &stubSupplier{tracks: []youtube.Track{
		{LanguageCode: "en", Name: "English (auto-generated)", Generated: true},
		{LanguageCode: "en", Name: "English", Translatable: true},
		{LanguageCode: "de", Name: "German"},
	}}

	stdout, _, err := runCLI(t, supplier, "", "tracks", "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("tracks error = %v", err)
	}
	for _, want := range []string{"LANGUAGE", "English (auto-generated)", "generated", "German"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("table missing %q:\n%s", want, stdout)
		}
	}

	// The manual English track is the one a transcript request would use.
	var marked []string
	for _, line := range strings.Split(stdout, "\n") {
		if strings.Contains(line, "*") {
			marked = append(marked, line)
		}
	}
	if len(marked) != 1 || !strings.Contains(marked[0], "manual") {
		t.Errorf("selected rows = %q", marked)
	}
}

func TestConfigCommand(t *testing.T) {
	stdout, _, err := runCLI(t, &stubSupplier{}, "", "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(stdout, "10 per minute") || !strings.Contains(stdout, "port: 5000") {
		t.Errorf("yaml output = %s", stdout)
	}

	stdout, _, err = runCLI(t, &stubSupplier{}, "", "config", "--toml")
	if err != nil {
		t.Fatalf("config --toml error = %v", err)
	}
	if !strings.Contains(stdout, "[server]") {
		t.Errorf("toml output = %s", stdout)
	}
}

func TestConfigFlagAndLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 7070\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, &stubSupplier{}, "", "--config", path, "--log-level", "DEBUG", "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(stdout, "port: 7070") || !strings.Contains(stdout, "level: debug") {
		t.Errorf("output = %s", stdout)
	}

	if _, _, err := runCLI(t, &stubSupplier{}, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func newTestServerApp(t *testing.T, cfg *config.Config) func(req *http.Request) *http.Response {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	supplier := &stubSupplier{transcripts: map[string]transcript.Sequence{"dQw4w9WgXcQ": sampleTranscript}}
	h := handlers.NewApplicationHandler(supplier, transcript.NewOptimizer(1), log, "")
	app, err := newApp(cfg, h, log)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	return func(req *http.Request) *http.Response {
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", req.Method, req.URL, err)
		}
		return resp
	}
}

func TestAppRateLimits(t *testing.T) {
	cfg := config.Default()
	do := newTestServerApp(t, cfg)

	for i := 1; i <= 10; i++ {
		resp := do(httptest.NewRequest("GET", "/api/transcript?url=dQw4w9WgXcQ", nil))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}

	resp := do(httptest.NewRequest("GET", "/api/transcript?url=dQw4w9WgXcQ", nil))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("11th request status = %d, want 429", resp.StatusCode)
	}
	var body handlers.RateLimitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Rate limit exceeded" || body.Description != "10 per minute" {
		t.Errorf("body = %+v", body)
	}

	// Other routes only count against the global limits.
	if resp := do(httptest.NewRequest("GET", "/api/hello", nil)); resp.StatusCode != http.StatusOK {
		t.Errorf("/api/hello status = %d", resp.StatusCode)
	}
}

func TestAppHealthIsNotLimited(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.Global = []string{"1 per hour"}
	do := newTestServerApp(t, cfg)

	do(httptest.NewRequest("GET", "/api/hello", nil))
	if resp := do(httptest.NewRequest("GET", "/api/hello", nil)); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second /api/hello status = %d, want 429", resp.StatusCode)
	}
	for i := 0; i < 3; i++ {
		if resp := do(httptest.NewRequest("GET", "/health", nil)); resp.StatusCode != http.StatusOK {
			t.Errorf("/health status = %d", resp.StatusCode)
		}
	}
}

func TestAppWithoutRateLimits(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	do := newTestServerApp(t, cfg)

	for i := 0; i < 15; i++ {
		if resp := do(httptest.NewRequest("GET", "/api/transcript?url=dQw4w9WgXcQ", nil)); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, resp.StatusCode)
		}
	}
}

func TestAppMiddlewareAndDocs(t *testing.T) {
	do := newTestServerApp(t, config.Default())

	req := httptest.NewRequest("GET", "/api/hello", nil)
	req.Header.Set("Origin", "https://chat.example.com")
	resp := do(req)
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	resp = do(httptest.NewRequest("GET", "/swagger/doc.json", nil))
	doc, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(doc), "YouTube Transcript API") {
		t.Errorf("swagger doc = %d %s", resp.StatusCode, doc)
	}

	resp = do(httptest.NewRequest("GET", "/openapi.json", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/openapi.json status = %d", resp.StatusCode)
	}

	resp = do(httptest.NewRequest("GET", "/nowhere", nil))
	var body handlers.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound || body.Status != "error" {
		t.Errorf("unknown route = %d %+v", resp.StatusCode, body)
	}
}

func TestServerRunAndShutdown(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := config.Default()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	srv := &server{
		cfg:      cfg,
		log:      log,
		supplier: &stubSupplier{transcripts: map[string]transcript.Sequence{"dQw4w9WgXcQ": sampleTranscript}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.run(ctx, ln) }()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/transcript?url=dQw4w9WgXcQ&format=text")
	if err != nil {
		cancel()
		t.Fatalf("GET error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "hello\nworld" {
		t.Errorf("response = %d %q", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerAppliesConfigChanges(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	srv := &server{log: log, levelFlag: ""}

	cfg := config.Default()
	cfg.Logging.Level = "error"
	srv.applyConfig(cfg)
	if log.GetLevel() != logrus.ErrorLevel {
		t.Errorf("level = %v, want error", log.GetLevel())
	}

	srv.levelFlag = "debug"
	srv.applyConfig(cfg)
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want the --log-level override", log.GetLevel())
	}
}
