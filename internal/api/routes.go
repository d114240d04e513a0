package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/deals", h.ListDeals)

		r.Route("/deals/{dealID}", func(r chi.Router) {
			r.Get("/report", h.GetDealReport)
			r.Get("/score", h.GetDealScore)
			r.Get("/coverage", h.GetDealCoverage)
			r.Get("/risk", h.GetDealRisk)
			r.Get("/snapshots", h.GetDealSnapshots)
			r.Get("/throttle", h.GetThrottleStatus)
			r.Post("/evaluate", h.EvaluateDeal)
		})

		// Ad-hoc analysis of caller-supplied contacts; nothing is fetched
		// from the CRM and nothing is persisted.
		r.Route("/analyze", func(r chi.Router) {
			r.Post("/score", h.AnalyzeScore)
			r.Post("/risk", h.AnalyzeRisk)
		})
	})

	return r
}
