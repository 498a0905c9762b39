package validation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func testApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.Post("/api/v1/reviews/analyze", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/v1/reviews/history", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func post(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/analyze",
		bytes.NewBufferString(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestMiddlewarePassesValidRequest(t *testing.T) {
	app := testApp(Config{})

	resp, err := app.Test(post(`{"review": "nice phone"}`, "application/json"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestMiddlewareRejectsWrongContentType(t *testing.T) {
	app := testApp(Config{})

	resp, err := app.Test(post("review=hello", "application/x-www-form-urlencoded"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestMiddlewareRejectsOversizedReview(t *testing.T) {
	app := testApp(Config{MaxReviewLength: 50})

	big := strings.Repeat("a", 51)
	resp, err := app.Test(post(`{"review": "`+big+`"}`, "application/json"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestMiddlewareRejectsMalformedJSON(t *testing.T) {
	app := testApp(Config{})

	resp, err := app.Test(post(`{broken`, "application/json"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMiddlewareIgnoresOtherRoutes(t *testing.T) {
	app := testApp(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/history", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 for non-analyze route", resp.StatusCode)
	}
}
