package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"transcript-api/internal/transcript"
	"transcript-api/internal/youtube"
	"transcript-api/middleware"
	"transcript-api/models"
	"transcript-api/utils"
)

// TrackList describes the caption tracks of one video. Selected is the
// track GET /api/transcript would use, or null when none matches the
// configured languages.
type TrackList struct {
	VideoID  string          `json:"video_id"`
	Selected *youtube.Track  `json:"selected"`
	Tracks   []youtube.Track `json:"tracks"`
}

// TracksSuccessResponse is the envelope returned by GET /api/tracks.
type TracksSuccessResponse struct {
	Status string    `json:"status"`
	Data   TrackList `json:"data"`
}

// GetTranscript godoc
// @Summary Get a video transcript
// @Description Fetches the caption track of a YouTube video and returns it as JSON segments, SRT subtitles or plain text. With optimize=true consecutive overlapping captions are merged first.
// @Tags transcripts
// @Produce json
// @Produce plain
// @Param url query string true "YouTube video URL or 11 character video id"
// @Param format query string false "Output format" Enums(json, srt, text) default(json)
// @Param optimize query bool false "Merge overlapping segments" default(false)
// @Success 200 {array} transcript.Segment "Transcript segments (format=json)"
// @Failure 400 {object} ErrorResponse "Missing or invalid URL or parameters"
// @Failure 404 {object} ErrorResponse "Transcript not available for this video"
// @Failure 429 {object} RateLimitResponse "Rate limit exceeded"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Failure 502 {object} ErrorResponse "YouTube returned malformed caption data"
// @Failure 503 {object} ErrorResponse "YouTube is throttling requests"
// @Router /api/transcript [get]
func (h *ApplicationHandler) GetTranscript(c *fiber.Ctx) error {
	var q models.TranscriptQuery
	if err := c.QueryParser(&q); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid query parameters: %v", err))
	}
	q.Normalize()
	if q.URL == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Missing YouTube URL")
	}
	if err := h.validate.Struct(q); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), ", "))
	}

	format, err := transcript.ParseFormat(q.Format)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	videoID, err := youtube.ExtractVideoID(q.URL)
	if err != nil {
		h.Logger.WithError(err).WithField("url", q.URL).Warn("Rejected video reference")
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid YouTube URL")
	}

	entry := h.Logger.WithFields(logrus.Fields{
		"request_id": middleware.RequestID(c),
		"video_id":   videoID,
		"format":     format,
		"optimize":   q.Optimize,
	})

	seq, err := h.Supplier.FetchTranscript(c.UserContext(), videoID)
	if err != nil {
		return h.respondSupplierError(c, entry, err)
	}

	fetched := len(seq)
	if q.Optimize {
		seq = h.Optimizer.Optimize(seq)
	}

	body, err := transcript.Encode(seq, format)
	if err != nil {
		if errors.Is(err, transcript.ErrMalformedSegment) {
			entry.WithError(err).Error("Caption track could not be encoded")
			return utils.RespondWithError(c, fiber.StatusBadGateway, "Transcript data is malformed: "+err.Error())
		}
		entry.WithError(err).Error("Transcript encoding failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "An error occurred: "+err.Error())
	}

	entry.WithFields(logrus.Fields{
		"segments_fetched": fetched,
		"segments_sent":    len(seq),
	}).Info("Successfully fetched transcript")

	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Status(fiber.StatusOK).Send(body)
}

// ListTracks godoc
// @Summary List caption tracks
// @Description Lists every caption track YouTube offers for a video and marks the one /api/transcript would use (null when no track matches the configured languages).
// @Tags transcripts
// @Produce json
// @Param url query string true "YouTube video URL or 11 character video id"
// @Success 200 {object} TracksSuccessResponse "Available caption tracks"
// @Failure 400 {object} ErrorResponse "Missing or invalid URL"
// @Failure 404 {object} ErrorResponse "Video unavailable or captions disabled"
// @Failure 429 {object} RateLimitResponse "Rate limit exceeded"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Failure 503 {object} ErrorResponse "YouTube is throttling requests"
// @Router /api/tracks [get]
func (h *ApplicationHandler) ListTracks(c *fiber.Ctx) error {
	var q models.TrackQuery
	if err := c.QueryParser(&q); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid query parameters: %v", err))
	}
	q.URL = utils.SanitizeInput(q.URL)
	if q.URL == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Missing YouTube URL")
	}

	videoID, err := youtube.ExtractVideoID(q.URL)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid YouTube URL")
	}

	entry := h.Logger.WithFields(logrus.Fields{
		"request_id": middleware.RequestID(c),
		"video_id":   videoID,
	})
	tracks, err := h.Supplier.ListTracks(c.UserContext(), videoID)
	if err != nil {
		return h.respondSupplierError(c, entry, err)
	}

	list := TrackList{VideoID: videoID, Tracks: tracks}
	if list.Tracks == nil {
		list.Tracks = []youtube.Track{}
	}
	if selected, err := youtube.SelectTrack(tracks, h.Supplier.Languages()); err == nil {
		list.Selected = &selected
	} else {
		entry.WithError(err).Debug("No caption track matches the preferred languages")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, list)
}

// respondSupplierError maps caption supplier failures onto HTTP statuses.
func (h *ApplicationHandler) respondSupplierError(c *fiber.Ctx, entry *logrus.Entry, err error) error {
	switch {
	case youtube.IsTranscriptUnavailable(err):
		entry.WithError(err).Warn("Transcript not available")
		return utils.RespondWithError(c, fiber.StatusNotFound, "Transcript not available for this video")
	case errors.Is(err, youtube.ErrInvalidVideoReference):
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid YouTube URL")
	case errors.Is(err, youtube.ErrTooManyRequests):
		entry.WithError(err).Warn("YouTube is throttling caption requests")
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "YouTube is rate limiting transcript requests, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		entry.WithError(err).Error("Caption request timed out")
		return utils.RespondWithError(c, fiber.StatusGatewayTimeout, "Timed out fetching the transcript")
	default:
		entry.WithError(err).Error("An error occurred while fetching transcript")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "An error occurred: "+err.Error())
	}
}
