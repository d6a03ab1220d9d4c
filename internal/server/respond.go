package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kolv02/backend/internal/auth"
	"github.com/kolv02/backend/internal/service"
)

// errBadBody marks request bodies that could not be decoded.
var errBadBody = errors.New("invalid request body")

// handlerFunc is a route handler that reports failures as errors instead
// of writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// authedFunc additionally receives the authenticated principal.
type authedFunc func(w http.ResponseWriter, r *http.Request, principal *auth.Claims) error

func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			respondError(w, r, err)
		}
	}
}

// withAuth requires a valid bearer token and passes its claims to the
// handler as an explicit parameter.
func (s *Server) withAuth(h authedFunc) http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		principal, err := s.principal(r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return nil
		}
		return h(w, r, principal)
	})
}

// withAdmin additionally requires the principal's admin flag. Non-admins
// get a bare 401, no body.
func (s *Server) withAdmin(h authedFunc) http.HandlerFunc {
	return s.withAuth(func(w http.ResponseWriter, r *http.Request, principal *auth.Claims) error {
		if !principal.Admin {
			w.WriteHeader(http.StatusUnauthorized)
			return nil
		}
		return h(w, r, principal)
	})
}

func (s *Server) principal(r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}
	return s.tokens.Validate(parts[1])
}

func respondJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// respondError is the centralized error responder.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrUnknownEmail) || errors.Is(err, auth.ErrWrongPassword):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
	case errors.Is(err, service.ErrNotSupported):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	default:
		// Missing records land here too; they are not distinguished
		// from other failures.
		slog.Error("Request error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrMissingFields) ||
		errors.Is(err, service.ErrInvalidEmail) ||
		errors.Is(err, service.ErrEmailExists) ||
		errors.Is(err, service.ErrDateAlreadyPresent) ||
		errors.Is(err, auth.ErrWeakPassword) ||
		errors.Is(err, errBadBody)
}

// decodeBody parses a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}
