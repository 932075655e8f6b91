package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erazemk/gildedrose/internal/metrics"
)

func TestSanitizeRequestID(t *testing.T) {
	if got := sanitizeRequestID("abc-123_XYZ"); got != "abc-123_XYZ" {
		t.Errorf("expected valid id to pass through, got %q", got)
	}

	for _, bad := range []string{"", "has space", "semi;colon", string(make([]byte, 65))} {
		got := sanitizeRequestID(bad)
		if got == bad || !requestIDPattern.MatchString(got) {
			t.Errorf("sanitizeRequestID(%q) = %q, expected a fresh id", bad, got)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/api/items":            "/api/items",
		"/api/items/42":         "/api/items/{id}",
		"/api/items/42/image":   "/api/items/{id}/image",
		"/api/items/quality":    "/api/items/quality",
		"/api/users/7/password": "/api/users/{id}/password",
		"/":                     "/",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoggingMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seenID string
	handler := LoggingMiddleware(logger, metrics.NewRecorder(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/api/items/1", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "req-1" {
		t.Errorf("expected echoed request id, got %q", got)
	}
	if seenID != "req-1" {
		t.Errorf("expected request id in context, got %q", seenID)
	}
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	sr.Write([]byte("ok"))
	if sr.status != http.StatusOK {
		t.Errorf("expected 200, got %d", sr.status)
	}
}
