package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Auth API
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteTenantMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireTenantAuth())...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPrefix, ChainMiddleware(http.HandlerFunc(preflightHandler), s.CorsMiddleware))

	// Operations
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteFunc("GET "+RouteReady, s.ReadyHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}

func preflightHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
