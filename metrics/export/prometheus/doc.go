// Package prometheus exposes authcore metrics through prometheus/client_golang.
//
// [PrometheusExporter] is a prometheus.Collector. Register it with your own
// registry, or mount [PrometheusExporter.Handler], which serves a private
// registry holding only authcore metrics. Counter names are prefixed
// authcore_*_total; the single histogram is authcore_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
