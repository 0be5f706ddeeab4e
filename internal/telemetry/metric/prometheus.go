package metric

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

const namespace = "xlremote"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Automation metrics
	ActionsTotal     *prometheus.CounterVec
	AutomationErrors *prometheus.CounterVec

	// Custom function metrics
	FunctionCalls    *prometheus.CounterVec
	FunctionDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the application metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Client actions returned by func.",
		}, []string{"func"}),
		AutomationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automation_errors_total",
			Help:      "Automation errors by error code.",
		}, []string{"code"}),
		FunctionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "function_calls_total",
			Help:      "Custom function calls by function and result.",
		}, []string{"function", "result"}),
		FunctionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "function_duration_seconds",
			Help:      "Custom function latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.RateLimited,
		r.ActionsTotal,
		r.AutomationErrors,
		r.FunctionCalls,
		r.FunctionDuration,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns the exposition handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// RecordRequest counts a finished HTTP request.
func (r *Registry) RecordRequest(method, route, status string) {
	r.RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// ObserveRequestDuration records the latency of an HTTP request in seconds.
func (r *Registry) ObserveRequestDuration(method, route string, seconds float64) {
	r.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// IncRateLimited counts a rejected request.
func (r *Registry) IncRateLimited() {
	r.RateLimited.Inc()
}

// ObserveActions counts the actions returned to a client.
func (r *Registry) ObserveActions(actions []domain.Action) {
	for _, a := range actions {
		r.ActionsTotal.WithLabelValues(a.Func).Inc()
	}
}

// ObserveError counts err when it is an automation error.
func (r *Registry) ObserveError(err error) {
	var de *domain.DomainError
	if errors.As(err, &de) && domain.IsAutomationError(de) {
		r.AutomationErrors.WithLabelValues(de.Code).Inc()
	}
}

// ObserveFunctionCall records a custom function call.
func (r *Registry) ObserveFunctionCall(name string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.FunctionCalls.WithLabelValues(name, result).Inc()
	r.FunctionDuration.WithLabelValues(name).Observe(d.Seconds())
}
