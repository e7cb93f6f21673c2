package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/naass/lead-api/internal/infra/http/middleware"
)

type RouterConfig struct {
	Drafts  *DraftHandler
	Leads   *LeadHandler
	Contact *ContactHandler
	Auth    *AuthHandler
	Health  *HealthHandler

	Verifier    middleware.TokenVerifier
	LimitStore  middleware.Store
	CORSOrigins []string
	Logger      zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(NotFound)
	r.Handle("/metrics", middleware.MetricsHandler())

	admin := middleware.RequireAdmin(cfg.Verifier)
	limit := func(p middleware.Policy) func(http.Handler) http.Handler {
		return middleware.RateLimit(cfg.LimitStore, p)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(limit(middleware.GeneralPolicy))

		r.Get("/health", cfg.Health.Handle)
		r.With(limit(middleware.AuthPolicy)).Post("/auth/login", cfg.Auth.Login)
		r.With(limit(middleware.ContactPolicy)).Post("/contact", cfg.Contact.Submit)

		r.Route("/drafts", func(r chi.Router) {
			r.With(limit(middleware.DraftSavePolicy)).Post("/{formType}/draft", cfg.Drafts.Save)
			r.Get("/{formType}/draft", cfg.Drafts.Get)
			r.Delete("/{formType}/draft", cfg.Drafts.Delete)

			r.With(admin).Get("/all", cfg.Drafts.List)
			r.With(admin).Post("/bulk-delete", cfg.Drafts.BulkDelete)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", cfg.Leads.List)
			r.Get("/stats", cfg.Leads.Stats)
			r.Put("/{id}", cfg.Leads.UpdateStatus)
			r.Patch("/{id}", cfg.Leads.UpdateStatus)
			r.Delete("/{id}", cfg.Leads.Delete)
			r.Post("/bulk-delete", cfg.Leads.BulkDelete)
		})
	})

	return r
}
