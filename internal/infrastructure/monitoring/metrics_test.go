package monitoring

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(200))
	assert.Equal(t, "3xx", StatusClass(302))
	assert.Equal(t, "4xx", StatusClass(404))
	assert.Equal(t, "5xx", StatusClass(503))
	assert.Equal(t, "unknown", StatusClass(0))
	assert.Equal(t, "unknown", StatusClass(600))
}

func TestRecordRequest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("GET", 200, 10*time.Millisecond, 512)
	m.RecordRequest("GET", 404, 5*time.Millisecond, 20)
	m.RecordRequest("POST", 201, time.Millisecond, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "2xx")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestNavigationAndSubmissionCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordNavigation("open")
	m.RecordNavigation("open")
	m.RecordNavigation("follow")
	m.RecordFailure("not_found")
	m.RecordSubmission("POST", "application/x-www-form-urlencoded")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Navigations.WithLabelValues("open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Navigations.WithLabelValues("follow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("POST", "application/x-www-form-urlencoded")))
}

func TestTimer(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	timer := NewTimer(m, "GET")
	timer.Stop(500, 10)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "5xx")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest("GET", 200, time.Millisecond, 1)
		m.RecordNavigation("open")
		m.RecordFailure("transport")
		m.RecordSubmission("GET", "")
		NewTimer(m, "GET").Stop(200, 1)
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RecordNavigation("open")
	m.RecordSubmission("POST", "text/plain")

	var out strings.Builder
	require.NoError(t, WriteText(&out, reg))

	assert.Contains(t, out.String(), "# TYPE statebrowser_navigations_total counter")
	assert.Contains(t, out.String(), `statebrowser_navigations_total{kind="open"} 1`)
	assert.Contains(t, out.String(), `statebrowser_form_submissions_total{enctype="text/plain",method="POST"} 1`)
}
