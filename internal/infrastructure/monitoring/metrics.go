package monitoring

import (
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the browser's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    prometheus.Histogram

	Navigations *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Submissions *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// to expose them process-wide, or a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statebrowser_requests_total",
				Help: "Total number of HTTP requests issued by the browser",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statebrowser_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		ResponseSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statebrowser_response_size_bytes",
				Help:    "Response body size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
		),
		Navigations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statebrowser_navigations_total",
				Help: "Page loads by kind (open, follow, submit, refresh)",
			},
			[]string{"kind"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statebrowser_failures_total",
				Help: "Failed navigations by reason",
			},
			[]string{"reason"},
		),
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statebrowser_form_submissions_total",
				Help: "Form submissions by method and encoding",
			},
			[]string{"method", "enctype"},
		),
	}
}

// RecordRequest records one completed HTTP exchange.
func (m *Metrics) RecordRequest(method string, status int, duration time.Duration, size int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, StatusClass(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	m.ResponseSize.Observe(float64(size))
}

// RecordNavigation counts a page load that updated the session.
func (m *Metrics) RecordNavigation(kind string) {
	if m == nil {
		return
	}
	m.Navigations.WithLabelValues(kind).Inc()
}

// RecordFailure counts a navigation that left the session unchanged.
func (m *Metrics) RecordFailure(reason string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(reason).Inc()
}

// RecordSubmission counts a form submission.
func (m *Metrics) RecordSubmission(method, enctype string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(method, enctype).Inc()
}

// StatusClass buckets a status code as "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Timer measures one request
type Timer struct {
	start   time.Time
	metrics *Metrics
	method  string
}

// NewTimer starts timing a request
func NewTimer(metrics *Metrics, method string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		method:  method,
	}
}

// Stop records the request with its outcome
func (t *Timer) Stop(status, size int) {
	t.metrics.RecordRequest(t.method, status, time.Since(t.start), size)
}

// WriteText writes everything g has collected in the Prometheus text
// exposition format
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
