package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "function_gateway"

var (
	// HTTPRequestsTotal counts handled requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"method", "route"},
	)

	// WebhookOutcomesTotal counts terminal states of POST /functions.
	WebhookOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_outcomes_total",
			Help:      "Inbound function webhooks by terminal outcome",
		},
		[]string{"outcome"},
	)

	// FunctionCallsTotal counts executed functions by result code.
	FunctionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "function_calls_total",
			Help:      "Function invocations by name and result code",
		},
		[]string{"function", "code"},
	)

	// FunctionDuration observes function execution time.
	FunctionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "function_duration_seconds",
			Help:      "Function execution duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
		[]string{"function"},
	)

	// UnhandledToolCallsTotal counts batched tool calls that were not executed.
	UnhandledToolCallsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unhandled_tool_calls_total",
			Help:      "Tool calls dropped because only the first call of a batch runs",
		},
	)

	// StorefrontRequestDuration observes storefront query latency by outcome.
	StorefrontRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storefront_request_duration_seconds",
			Help:      "Storefront GraphQL request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3},
		},
		[]string{"outcome"},
	)

	// StorefrontThrottleWarningsTotal counts responses below the throttle low-water mark.
	StorefrontThrottleWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_throttle_warnings_total",
			Help: "Storefront responses whose available query budget fell below the low-water mark",
		},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, status string, durationSec float64) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

// RecordWebhookOutcome records the terminal state of one webhook.
func RecordWebhookOutcome(outcome string) {
	WebhookOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordFunctionCall records one executed function. An empty code means success.
func RecordFunctionCall(name, code string, durationSec float64) {
	if code == "" {
		code = "OK"
	}
	FunctionCallsTotal.WithLabelValues(name, code).Inc()
	FunctionDuration.WithLabelValues(name).Observe(durationSec)
}

// RecordUnhandledToolCalls adds n dropped tool calls.
func RecordUnhandledToolCalls(n int) {
	if n <= 0 {
		return
	}
	UnhandledToolCallsTotal.Add(float64(n))
}

// RecordStorefrontRequest records one storefront round trip.
func RecordStorefrontRequest(outcome string, durationSec float64) {
	StorefrontRequestDuration.WithLabelValues(outcome).Observe(durationSec)
}

// RecordThrottleWarning records one low-budget response.
func RecordThrottleWarning() {
	StorefrontThrottleWarningsTotal.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
