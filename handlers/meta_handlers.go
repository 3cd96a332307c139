package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RateLimitResponse is returned with 429 when a client exceeds a limit.
type RateLimitResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

type HelloResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Hello godoc
// @Summary Greeting
// @Tags meta
// @Produce json
// @Success 200 {object} HelloResponse
// @Router /api/hello [get]
func (h *ApplicationHandler) Hello(c *fiber.Ctx) error {
	return c.JSON(HelloResponse{Message: "Hello, World!"})
}

// Health godoc
// @Summary Liveness check
// @Tags meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *ApplicationHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Status:  "ok",
		Message: "Transcript API is healthy",
	})
}

// OpenAPI serves an OpenAPI 3.1 description of the transcript endpoint for
// tools that import an API by URL. The advertised server is PublicURL when
// set, otherwise the request origin forced to https.
func (h *ApplicationHandler) OpenAPI(c *fiber.Ctx) error {
	server := h.PublicURL
	if server == "" {
		server = strings.ReplaceAll(c.BaseURL(), "http://", "https://")
	}
	return c.JSON(openAPIDocument(strings.TrimRight(server, "/")))
}

func openAPIDocument(serverURL string) fiber.Map {
	segmentArray := fiber.Map{
		"type": "array",
		"items": fiber.Map{
			"type": "object",
			"properties": fiber.Map{
				"text":     fiber.Map{"type": "string"},
				"start":    fiber.Map{"type": "number"},
				"duration": fiber.Map{"type": "number"},
			},
		},
	}

	return fiber.Map{
		"openapi": "3.1.0",
		"info": fiber.Map{
			"title":       "YouTube Transcript API",
			"description": "Retrieves transcript data for YouTube videos.",
			"version":     "v1.0.0",
		},
		"servers": []fiber.Map{{"url": serverURL}},
		"paths": fiber.Map{
			"/api/transcript": fiber.Map{
				"get": fiber.Map{
					"description": "Get transcript for a specific YouTube video",
					"operationId": "GetYouTubeTranscript",
					"parameters": []fiber.Map{
						{
							"name":        "url",
							"in":          "query",
							"description": "The full URL of the YouTube video",
							"required":    true,
							"schema":      fiber.Map{"type": "string"},
						},
						{
							"name":        "format",
							"in":          "query",
							"description": "Output format: structured JSON segments, SRT subtitles or plain text",
							"required":    false,
							"schema": fiber.Map{
								"type":    "string",
								"enum":    []string{"json", "srt", "text"},
								"default": "json",
							},
						},
						{
							"name":        "optimize",
							"in":          "query",
							"description": "Merge consecutive overlapping caption segments",
							"required":    false,
							"schema":      fiber.Map{"type": "boolean", "default": false},
						},
					},
					"responses": fiber.Map{
						"200": fiber.Map{
							"description": "Successful response",
							"content": fiber.Map{
								"application/json": fiber.Map{"schema": segmentArray},
								"text/plain":       fiber.Map{"schema": fiber.Map{"type": "string"}},
							},
						},
						"400": fiber.Map{"description": "Bad request - Invalid YouTube URL"},
						"404": fiber.Map{"description": "Transcript not available for this video"},
						"429": fiber.Map{"description": "Rate limit exceeded"},
						"500": fiber.Map{"description": "Internal server error"},
					},
				},
			},
		},
		"components": fiber.Map{"schemas": fiber.Map{}},
	}
}
