package server

// Route path constants
const (
	RouteAPIPrefix = "/api/v1/"

	RouteLogin    = "/api/v1/auth/login"
	RouteMe       = "/api/v1/auth/me"
	RouteTenantMe = "/api/v1/tenants/{tenant}/me"

	RouteHealth  = "/healthz"
	RouteReady   = "/readyz"
	RouteMetrics = "/metrics"
)

// maxLoginBodyBytes caps the login request body.
const maxLoginBodyBytes = 16 << 10
