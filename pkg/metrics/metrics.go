// Package metrics provides the centralized Prometheus metrics registry
// for the FluentCRM client. The metrics themselves are defined next to
// the code they instrument (pkg/client) to avoid circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the CRM client.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - fluentcrm_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - fluentcrm_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - fluentcrm_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(fluentcrm_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(fluentcrm_request_duration_seconds_bucket[5m]))
