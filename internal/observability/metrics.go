// Package observability provides Prometheus metrics, HTTP instrumentation
// and logger setup for the auth service.
package observability

import "github.com/prometheus/client_golang/prometheus"

const namespace = "timetrack_auth"

// Login outcomes.
const (
	LoginSuccess     = "success"
	LoginRejected    = "rejected"
	LoginUnavailable = "unavailable"
)

// Token verification results.
const (
	TokenValid   = "valid"
	TokenInvalid = "invalid"
	TokenExpired = "expired"
)

// Credential reload results.
const (
	ReloadSuccess = "success"
	ReloadFailure = "failure"
)

var (
	// LoginsTotal counts login calls by outcome.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login requests by outcome",
		},
		[]string{"outcome"},
	)

	// TokenVerificationsTotal counts bearer token checks by result.
	TokenVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_verifications_total",
			Help:      "Bearer token verifications by result",
		},
		[]string{"result"},
	)

	// CredentialReloadsTotal counts credential file reloads by result.
	CredentialReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_reloads_total",
			Help:      "Credential file reloads",
		},
		[]string{"result"},
	)

	// RequestsTotal counts HTTP requests by method, route pattern and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	// Buckets start low because a login is dominated by one bcrypt comparison.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(
		LoginsTotal,
		TokenVerificationsTotal,
		CredentialReloadsTotal,
		RequestsTotal,
		RequestDuration,
	)
}
