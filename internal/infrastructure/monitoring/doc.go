/*
Package monitoring exposes Prometheus metrics for browser sessions and the
linkcast HTTP server.

Collectors are registered on an injected prometheus.Registerer, so tests can
use a private registry:

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))

Metrics implements the session and window observer hooks; the server
publishes the registry at /metrics.
*/
package monitoring
