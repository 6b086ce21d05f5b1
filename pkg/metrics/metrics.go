// Package metrics provides the Prometheus registry used by the cloud client.
// Metrics are defined in the packages that record them (client, authdata)
// and registered through promauto.
//
// This package documents the available metrics and exposes them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the cloud client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler serves every metric registered in Registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - cloud_requests_total{route, outcome} (Counter): Completed tasks by route and outcome
//   - cloud_request_duration_seconds{route} (Histogram): Network call duration, excluding the dispatch delay
//   - cloud_tasks_in_flight (Gauge): Dispatched tasks that have not completed
//
// Auth Data Metrics (pkg/authdata):
//   - cloud_auth_data_lookups_total{result} (Counter): Redis auth data reads by result (hit, miss, error)
//
// Example Prometheus Queries:
//
//   # Network failure rate
//   sum(rate(cloud_requests_total{outcome="network_error"}[5m])) /
//   sum(rate(cloud_requests_total[5m]))
//
//   # Auth rejections per route
//   sum by (route) (rate(cloud_requests_total{outcome="auth_error"}[5m]))
//
//   # P95 network latency
//   histogram_quantile(0.95, rate(cloud_request_duration_seconds_bucket[5m]))
