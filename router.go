package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/assumables-api/http"
	"github.com/yourorg/assumables-api/internal/auth"
	"github.com/yourorg/assumables-api/internal/logger"
)

type RouterConfig struct {
	Listings httpapi.ListingsDeps
	Auth     *auth.Service
	// DisableAuth leaves /api open, for local development only.
	DisableAuth    bool
	AllowedOrigins []string
	Log            *slog.Logger
}

func BuildRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(cfg.Log))
	r.Use(httprate.LimitByIP(100, 1*time.Minute)) // protect geocode quota
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ok":true}`)) })

	httpapi.RegisterAuth(r, httpapi.AuthDeps{Service: cfg.Auth})

	r.Group(func(api chi.Router) {
		if !cfg.DisableAuth {
			api.Use(cfg.Auth.Middleware)
		}
		httpapi.RegisterListings(api, cfg.Listings)
	})

	return r
}
