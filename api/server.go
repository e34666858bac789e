/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/pairings/*      Per-pairing assignment operations
  /api/assignments/*   Assignment lifecycle, ledger, audit
  /api/catalog/*       Tank types and items

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Pairing routes
		r.Route("/pairings/{id}", func(r chi.Router) {
			r.Post("/assignments", h.CreateAssignment)
			r.Post("/assignments/today", h.CreateOrGetToday)
			r.Get("/assignments/current", h.GetCurrentAssignment)
		})

		// Assignment routes
		r.Route("/assignments/{id}", func(r chi.Router) {
			r.Get("/", h.GetAssignment)
			r.Put("/status", h.UpdateStatus)
			r.Post("/delivery-out", h.DeliveryOut)
			r.Post("/delivery-return", h.DeliveryReturn)
			r.Post("/adjustments", h.StockAdjustment)
			r.Post("/consolidate", h.Consolidate)
			r.Get("/balances", h.GetBalances)
			r.Get("/transactions", h.GetTransactions)
			r.Get("/history", h.GetHistory)
		})

		// Catalog routes
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/tanks", h.ListTankTypes)
			r.Post("/tanks", h.SaveTankType)
			r.Get("/items", h.ListItems)
			r.Post("/items", h.SaveItem)
		})
	})

	return r
}
