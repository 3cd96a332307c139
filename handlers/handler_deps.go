package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"transcript-api/internal/transcript"
	"transcript-api/internal/youtube"
)

// TranscriptSupplier defines the caption operations handlers expect.
// youtube.Client is the production implementation.
type TranscriptSupplier interface {
	FetchTranscript(ctx context.Context, videoID string) (transcript.Sequence, error)
	ListTracks(ctx context.Context, videoID string) ([]youtube.Track, error)
	// Languages lists the preferred caption languages FetchTranscript
	// chooses from, in order.
	Languages() []string
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Supplier  TranscriptSupplier
	Optimizer transcript.Optimizer
	Logger    *logrus.Logger
	// PublicURL overrides the server URL advertised in /openapi.json.
	PublicURL string

	validate *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(supplier TranscriptSupplier, optimizer transcript.Optimizer, logger *logrus.Logger, publicURL string) *ApplicationHandler {
	return &ApplicationHandler{
		Supplier:  supplier,
		Optimizer: optimizer,
		Logger:    logger,
		PublicURL: publicURL,
		validate:  validator.New(),
	}
}
