// Package metric provides Prometheus metrics for xlremote.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, recording helpers and HTTP handler
//   - collector.go: custom collector for build and function registry info
//
// Metrics include:
//
//   - HTTP request counts and latency histograms per route
//   - Client actions recorded per action func
//   - Automation errors per error code
//   - Custom function call counts and latencies
//
// Metrics are exposed at telemetry.metrics.path (default /metrics).
package metric
