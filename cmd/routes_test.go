package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iiSmitty/my-it-services/internal/logging"
	"github.com/iiSmitty/my-it-services/internal/metrics"
	"github.com/iiSmitty/my-it-services/internal/quote"
	"github.com/iiSmitty/my-it-services/internal/quote/catalog/catalogtest"
)

func testApp(t *testing.T) (*application, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, serviceName, "info")
	cfg := quote.QuoteConfig{TokenSecret: "secret", RatePerMinute: 600, RateBurst: 50}
	return initializeApp(logger, catalogtest.New(t), cfg, nil, metrics.New()), &buf
}

func TestRoutes(t *testing.T) {
	app, logs := testApp(t)
	handler, err := app.routes()
	if err != nil {
		t.Fatalf("routes: %v", err)
	}

	tests := []struct {
		method, path string
		wantCode     int
		wantBody     string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, `"status":"ok"`},
		{http.MethodGet, "/api/v1/quote/catalog", http.StatusOK, `"default_urgency":"week"`},
		{http.MethodGet, "/api/v1/quote/submissions/nope", http.StatusNotFound, "submission not found"},
		{http.MethodGet, "/ws/quote", http.StatusUnauthorized, "missing token"},
		{http.MethodGet, "/metrics", http.StatusOK, "quote_http_request_duration_seconds"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.wantCode {
			t.Fatalf("%s %s: expected %d got %d", tt.method, tt.path, tt.wantCode, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.wantBody) {
			t.Fatalf("%s %s: body %q missing %q", tt.method, tt.path, rec.Body.String(), tt.wantBody)
		}
		if rec.Header().Get("X-Frame-Options") != "deny" {
			t.Fatalf("%s %s: secure headers missing", tt.method, tt.path)
		}
	}
	if !strings.Contains(logs.String(), `"uri":"/healthz"`) {
		t.Fatalf("expected request log line, got %s", logs.String())
	}
}

func TestRecoverPanic(t *testing.T) {
	app, logs := testApp(t)
	h := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || rec.Header().Get("Connection") != "close" {
		t.Fatalf("unexpected response %d %v", rec.Code, rec.Header())
	}
	if !strings.Contains(logs.String(), "boom") {
		t.Fatalf("expected panic to be logged, got %s", logs.String())
	}
}

func TestAllowedOrigins(t *testing.T) {
	if got := allowedOrigins(""); len(got) != len(defaultOrigins) {
		t.Fatalf("expected defaults, got %v", got)
	}
	got := allowedOrigins(" https://a.example ,,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", got)
	}
}
