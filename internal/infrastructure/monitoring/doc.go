/*
Package monitoring exposes Prometheus metrics for browsing sessions.

# Metrics

  - statebrowser_requests_total{method,status}: requests by status class
  - statebrowser_request_duration_seconds{method}
  - statebrowser_response_size_bytes
  - statebrowser_navigations_total{kind}: open, follow, submit, refresh
  - statebrowser_failures_total{reason}: transport, not_found, parse
  - statebrowser_form_submissions_total{method,enctype}

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	b := browser.New(browser.WithMetrics(metrics))
*/
package monitoring
