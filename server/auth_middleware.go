package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/timetrack-auth/auth"
	"github.com/jrsteele09/timetrack-auth/internal/observability"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyPrincipal stores the verified *auth.Principal
const ContextKeyPrincipal ContextKey = "principal"

// PrincipalFromContext returns the principal placed by RequireAuth or RequireTenantAuth.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	principal, ok := ctx.Value(ContextKeyPrincipal).(*auth.Principal)
	return principal, ok && principal != nil
}

// RequireAuth validates the Bearer token in the Authorization header.
func (s *Server) RequireAuth() Middleware {
	return s.requireBearer(func(r *http.Request, rawToken string) (*auth.Principal, error) {
		return s.auth.Verify(rawToken)
	})
}

// RequireTenantAuth is RequireAuth plus a check that the token was issued
// for the {tenant} path segment.
func (s *Server) RequireTenantAuth() Middleware {
	return s.requireBearer(func(r *http.Request, rawToken string) (*auth.Principal, error) {
		return s.auth.VerifyForTenant(rawToken, r.PathValue("tenant"))
	})
}

func (s *Server) requireBearer(verify func(r *http.Request, rawToken string) (*auth.Principal, error)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				observability.TokenVerificationsTotal.WithLabelValues(observability.TokenInvalid).Inc()
				writeUnauthorized(w)
				return
			}

			principal, err := verify(r, rawToken)
			if err != nil {
				result := observability.TokenInvalid
				if errors.Is(err, auth.ErrTokenExpired) {
					result = observability.TokenExpired
				}
				observability.TokenVerificationsTotal.WithLabelValues(result).Inc()
				log.Debug().
					Err(err).
					Str("request_id", chimiddleware.GetReqID(r.Context())).
					Str("path", r.URL.Path).
					Msg("bearer token rejected")
				writeUnauthorized(w)
				return
			}

			observability.TokenVerificationsTotal.WithLabelValues(observability.TokenValid).Inc()
			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}
