/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web client

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", h.GetDataset)
		r.Put("/settings", h.UpdateSettings)

		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.CreateMember)
			r.Put("/{id}", h.UpdateMember)
			r.Delete("/{id}", h.DeleteMember)
		})

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", h.ListSources)
			r.Post("/", h.CreateSource)
			r.Put("/{id}", h.UpdateSource)
			r.Delete("/{id}", h.DeleteSource)
		})

		r.Route("/benefits", func(r chi.Router) {
			r.Get("/", h.ListBenefits)
			r.Post("/", h.CreateBenefit)
			r.Get("/status", h.ListBenefitStatuses)
			r.Get("/{id}/status", h.GetBenefitStatus)
			r.Put("/{id}", h.UpdateBenefit)
			r.Delete("/{id}", h.DeleteBenefit)
		})

		r.Route("/redemptions", func(r chi.Router) {
			r.Get("/", h.ListRedemptions)
			r.Post("/", h.CreateRedemption)
			r.Delete("/{id}", h.DeleteRedemption)
		})

		r.Route("/points-sources", func(r chi.Router) {
			r.Get("/", h.ListPointsSources)
			r.Post("/", h.CreatePointsSource)
			r.Get("/{id}/affordability", h.GetAffordability)
			r.Put("/{id}", h.UpdatePointsSource)
			r.Delete("/{id}", h.DeletePointsSource)
		})

		r.Route("/redeemables", func(r chi.Router) {
			r.Post("/", h.CreateRedeemable)
			r.Put("/{id}", h.UpdateRedeemable)
			r.Delete("/{id}", h.DeleteRedeemable)
		})
	})

	return r
}
