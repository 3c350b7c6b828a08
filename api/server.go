/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer connecting URLs to handlers; the handlers themselves
  are thin callers into the compliance engine.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/sites/*       Site management, schedules, completions, out-lists
  /api/assets/*      Per-asset operations (Service & Save)
  /api/scenarios/*   Demo data seeding

SECURITY NOTE:
  Authentication is out of scope. The acting user is taken from the
  X-Actor header supplied by the identity layer in front of this service.
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

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Actor"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/sites", func(r chi.Router) {
			r.Get("/", h.ListSites)
			r.Post("/", h.CreateSite)
			r.Get("/{id}", h.GetSite)
			r.Post("/{id}/archive", h.ArchiveSite)

			r.Get("/{id}/assets", h.ListSiteAssets)
			r.Post("/{id}/assets", h.CreateAsset)

			r.Put("/{id}/technician", h.AssignTechnician)
			r.Post("/{id}/schedule/toggle", h.ToggleMonth)
			r.Put("/{id}/appointment", h.SetAppointment)

			r.Get("/{id}/completions", h.ListCompletions)
			r.Post("/{id}/completions", h.MarkComplete)
			r.Delete("/{id}/completions", h.UndoComplete)

			r.Get("/{id}/outlist", h.OutList)
			r.Post("/{id}/outlist", h.AddOutEntry)
			r.Put("/{id}/outlist/{entryID}", h.UpdateOutEntry)
			r.Delete("/{id}/outlist/{entryID}", h.DeleteOutEntry)
			r.Post("/{id}/outlist/clear", h.ClearAutoLine)

			r.Get("/{id}/forecast", h.Forecast)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Post("/{id}/service", h.ServiceAsset)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
