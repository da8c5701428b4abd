package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quote"

// Recorder owns the service collectors. A nil *Recorder records nothing.
type Recorder struct {
	reg         *prometheus.Registry
	submissions *prometheus.CounterVec
	validation  *prometheus.CounterVec
	quotes      *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Quote submissions by resulting status.",
		}, []string{"status"}),
		validation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Form validation failures by field.",
		}, []string{"field"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "composed_total",
			Help:      "Quote messages composed, split by whether a custom quote is needed.",
		}, []string{"custom"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	r.reg.MustRegister(
		r.submissions,
		r.validation,
		r.quotes,
		r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Submission(status string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(status).Inc()
}

func (r *Recorder) ValidationFailed(field string) {
	if r == nil {
		return
	}
	r.validation.WithLabelValues(field).Inc()
}

func (r *Recorder) QuoteComposed(custom bool) {
	if r == nil {
		return
	}
	r.quotes.WithLabelValues(strconv.FormatBool(custom)).Inc()
}

func (r *Recorder) ObserveRequest(method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
