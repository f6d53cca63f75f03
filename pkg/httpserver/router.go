package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/correlation"
)

// NewOpsRouter returns a router serving /healthz and /readyz. Callers may
// mount further operational endpoints on it.
func NewOpsRouter(log *slog.Logger, checkTimeout time.Duration, checks ...Check) chi.Router {
	r := chi.NewRouter()
	r.Use(correlation.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", LivenessHandler())
	r.Get("/readyz", ReadinessHandler(log, checkTimeout, checks...))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	return r
}

// WriteJSON encodes v as the response body.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, v)
}
