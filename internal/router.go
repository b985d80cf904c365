package internal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/quill/internal/api"
	"github.com/starford/quill/internal/form"
	"github.com/starford/quill/internal/noteservice"
)

// NewRouter builds the HTTP handler: the note form at /, the JSON API
// under /api, and health checks. events, if non-nil, is served at
// /api/events behind the API auth.
func NewRouter(cfg *Config, svc *noteservice.Service, events http.Handler, version string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	health := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","version":"` + version + `"}`))
	}
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	fh := form.NewHandler(svc, cfg.Auth.FormToken())
	r.Mount("/", fh.Routes())

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, events))

	return r
}
