/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to
  handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/sites/{site}/users/{userId}/*   Per-user availability/desiderata
  /api/sites/{site}/periods/{year}/*   Period administration

SECURITY NOTE:
  No authentication middleware; the engine sits behind the deployment's
  own auth proxy.

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
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api/sites/{site}", func(r chi.Router) {
		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/availability", h.GetAvailability)
			r.Put("/availability/rules", h.SaveRules)
			r.Put("/availability/exceptions", h.UpsertException)
			r.Get("/calendar", h.GetCalendar)

			r.Post("/desiderata/validate", h.ValidateDesiderata)
			r.Get("/desiderata/{periodId}", h.GetDesiderata)
			r.Post("/desiderata/{periodId}/recalculate", h.RecalculateDesiderata)
		})

		r.Route("/periods/{year}", func(r chi.Router) {
			r.Get("/", h.GetPeriods)
			r.Put("/", h.SavePeriods)
			r.Post("/reset", h.ResetPeriods)
			r.Get("/{periodId}/grid", h.GetGrid)
		})
	})

	return r
}
