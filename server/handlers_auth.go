package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/timetrack-auth/auth"
	"github.com/jrsteele09/timetrack-auth/internal/observability"
	"github.com/rs/zerolog/log"
)

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

var errUnsupportedMediaType = errors.New("unsupported content type")

// LoginHandler exchanges tenant credentials for a session token.
// Every authentication failure gets the same 401 body; only logs and
// metrics tell an unknown user, a wrong password and a store outage apart.
func (s *Server) LoginHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)

		req, err := decodeLoginRequest(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				writeJSONError(w, "invalid_request", "request body too large", http.StatusRequestEntityTooLarge)
			case errors.Is(err, errUnsupportedMediaType):
				writeJSONError(w, "invalid_request", "expected application/json or application/x-www-form-urlencoded", http.StatusUnsupportedMediaType)
			default:
				writeJSONError(w, "invalid_request", "malformed login request", http.StatusBadRequest)
			}
			return
		}

		session, err := s.auth.Authenticate(r.Context(), req)
		if err != nil {
			outcome := observability.LoginRejected
			if errors.Is(err, auth.ErrStoreUnavailable) {
				outcome = observability.LoginUnavailable
			}
			observability.LoginsTotal.WithLabelValues(outcome).Inc()
			log.Info().
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Str("tenant", req.TenantID).
				Str("outcome", outcome).
				Msg("login failed")
			writeJSONError(w, "invalid_credentials", "credentials rejected", http.StatusUnauthorized)
			return
		}

		observability.LoginsTotal.WithLabelValues(observability.LoginSuccess).Inc()
		writeJSON(w, http.StatusOK, LoginResponse{
			Token:     session.Token,
			TokenType: session.TokenType,
			ExpiresIn: int64(session.ExpiresAt.Sub(session.IssuedAt) / time.Second),
			ExpiresAt: session.ExpiresAt,
		})
	})
}

func decodeLoginRequest(r *http.Request) (auth.LoginRequest, error) {
	var req auth.LoginRequest

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return req, errUnsupportedMediaType
	}

	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, err
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return req, errors.New("unexpected data after login object")
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.TenantID = r.PostForm.Get("tenant")
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	default:
		return req, errUnsupportedMediaType
	}
	return req, nil
}

// MeHandler returns the principal verified by the auth middleware.
func (s *Server) MeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		writeJSON(w, http.StatusOK, principal)
	})
}
