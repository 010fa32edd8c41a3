package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// lookupTimeout bounds the store lookups a single request may trigger.
const lookupTimeout = 10 * time.Second

var errReadOnly = errors.New("gateway only serves GET requests")

func (h *Handler) RegisterMiddleware(srv *Server) {
	srv.RegisterMiddleware(readOnly, boundLookups(lookupTimeout))
}

// setContentType marks responses as JSON. Handlers serving other formats override it.
func setContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// readOnly rejects requests which could not be served by the read-only endpoints.
func readOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, http.StatusMethodNotAllowed, r.URL.Path, errReadOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// boundLookups cancels confidence and app data lookups of a request after timeout.
func boundLookups(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
