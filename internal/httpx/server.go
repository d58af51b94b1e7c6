package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ecobazaar/internal/apperr"
	"ecobazaar/internal/users"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the shared error kinds onto HTTP statuses. Anything
// unclassified is a 500 with a generic body so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// Actor is the authenticated identity forwarded by the gateway.
// Authentication itself happens upstream; we trust the headers here.
type Actor struct {
	ID   string
	Role users.Role
}

func actorFrom(r *http.Request) (Actor, bool) {
	id := r.Header.Get("X-User-Id")
	role := users.Role(r.Header.Get("X-User-Role"))
	if id == "" || !role.Valid() {
		return Actor{}, false
	}
	return Actor{ID: id, Role: role}, true
}

// requireActor rejects requests without gateway identity headers.
func requireActor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	a, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid identity headers"})
	}
	return a, ok
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
