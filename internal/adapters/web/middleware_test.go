package web

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"postgrab/pkg/log"
	"postgrab/pkg/log/transporters"
)

func setupTestApp() *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(RequestIDConfig()))
	app.Use(RequestIDToContextMiddleware())
	return app
}

// captureLogs installs a JSON logger writing to the returned buffer. Call the
// returned func before reading the buffer.
func captureLogs(t *testing.T) (*bytes.Buffer, func()) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(log.Info, transporters.NewZerolog(&buf))
	log.SetDefault(logger)
	t.Cleanup(func() {
		logger.Close()
		log.SetDefault(nil)
	})
	return &buf, logger.Close
}

func TestRequestIDToContext_GeneratesUUID(t *testing.T) {
	app := setupTestApp()

	var capturedRequestID string
	app.Get("/test", func(c *fiber.Ctx) error {
		capturedRequestID = log.RequestIDFromContext(c.UserContext())
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if _, err := uuid.Parse(capturedRequestID); err != nil {
		t.Errorf("request_id %q should be a UUID: %v", capturedRequestID, err)
	}
	if headerID := resp.Header.Get("X-Request-ID"); headerID != capturedRequestID {
		t.Errorf("response header = %q, context = %q, should match", headerID, capturedRequestID)
	}
}

func TestRequestIDToContext_UsesProvidedID(t *testing.T) {
	app := setupTestApp()

	var capturedRequestID string
	app.Get("/test", func(c *fiber.Ctx) error {
		capturedRequestID = log.RequestIDFromContext(c.UserContext())
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "custom-trace-id-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if capturedRequestID != "custom-trace-id-123" {
		t.Errorf("request_id = %q, want %q", capturedRequestID, "custom-trace-id-123")
	}
}

func TestRequestLoggerMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"ok", fiber.StatusOK, `"level":"info"`},
		{"client error", fiber.StatusNotFound, `"level":"warn"`},
		{"server error", fiber.StatusBadGateway, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, flush := captureLogs(t)

			app := setupTestApp()
			app.Use(RequestLoggerMiddleware())
			app.Get("/test-path", func(c *fiber.Ctx) error {
				return c.Status(tt.status).SendString("body")
			})

			req := httptest.NewRequest("GET", "/test-path", nil)
			req.Header.Set("X-Request-ID", "test-req-123")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			flush()
			output := buf.String()

			for _, want := range []string{"request completed", "test-req-123", "/test-path", tt.level} {
				if !strings.Contains(output, want) {
					t.Errorf("log should contain %s, got: %s", want, output)
				}
			}
		})
	}
}

func TestCORSConfig_AllowsAnyOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(cors.New(CORSConfig()))
	app.Get("/test", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Access-Control-Allow-Methods = %q, should include POST", got)
	}
}
