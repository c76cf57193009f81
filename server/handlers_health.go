package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const readinessTimeout = 2 * time.Second

// HealthHandler reports liveness only.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

// ReadyHandler runs every readiness check and reports 503 if any fails.
func (s *Server) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(s.checks))
		for _, name := range s.readinessNames() {
			if err := s.checks[name](ctx); err != nil {
				log.Warn().Err(err).Str("check", name).Msg("readiness check failed")
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		writeJSON(w, status, results)
	}
}
