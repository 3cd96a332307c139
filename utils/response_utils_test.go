package utils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	tests := []struct {
		path        string
		wantStatus  int
		wantMessage string
	}{
		{"/boom", fiber.StatusInternalServerError, "An error occurred: boom"},
		{"/teapot", fiber.StatusTeapot, "short and stout"},
		{"/nowhere", fiber.StatusNotFound, "Cannot GET /nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["status"] != "error" || body["message"] != tt.wantMessage {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	type payload struct {
		Format string `validate:"oneof=json srt text"`
		Name   string `validate:"required"`
	}

	err := validator.New().Struct(payload{Format: "xml"})
	got := FormatValidationErrors(err)
	want := []string{
		"Field 'Format' failed on the 'oneof' tag (value: json srt text)",
		"Field 'Name' failed on the 'required' tag",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := FormatValidationErrors(nil); got != nil {
		t.Errorf("FormatValidationErrors(nil) = %v", got)
	}
}
