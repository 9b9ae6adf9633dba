package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cqle/dba-virtual/backend/internal/logging"
)

func TestRequestLoggerWritesCompletionLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestLogger(logger))
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logging.Ctx(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var inner map[string]any
	if err := json.Unmarshal(lines[0], &inner); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if inner[logging.FieldRequestID] == "" || inner[logging.FieldRequestID] == nil {
		t.Fatalf("handler log missing request id: %s", lines[0])
	}

	var done map[string]any
	if err := json.Unmarshal(lines[1], &done); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if done[logging.FieldStatus] != float64(http.StatusTeapot) {
		t.Fatalf("unexpected status field: %v", done[logging.FieldStatus])
	}
	if done[logging.FieldClientIP] != "203.0.113.5" {
		t.Fatalf("unexpected client ip: %v", done[logging.FieldClientIP])
	}
	if done[logging.FieldPath] != "/ping" {
		t.Fatalf("unexpected path: %v", done[logging.FieldPath])
	}
}

func TestCORSPreflight(t *testing.T) {
	r := chi.NewRouter()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.Post("/api/chat", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, X-User-ID")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := chi.NewRouter()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.Get("/api/history", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
