package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecorderExposesCounters(t *testing.T) {
	r := New()
	r.Submission("sent")
	r.Submission("sent")
	r.ValidationFailed("name")
	r.QuoteComposed(true)
	r.ObserveRequest(http.MethodPost, http.StatusAccepted, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`quote_submissions_total{status="sent"} 2`,
		`quote_validation_failures_total{field="name"} 1`,
		`quote_composed_total{custom="true"} 1`,
		`quote_http_request_duration_seconds_count{method="POST",status="202"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Submission("sent")
	r.ValidationFailed("name")
	r.QuoteComposed(false)
	r.ObserveRequest(http.MethodGet, http.StatusOK, time.Millisecond)
	if r.Handler() == nil {
		t.Fatal("expected default handler")
	}
}
