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
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// External cron services GET; operators may POST
		r.Get("/cron/daily-orders", h.TriggerDailyOrders)
		r.Post("/cron/daily-orders", h.TriggerDailyOrders)
		r.Get("/cron/status", h.CronStatus)

		r.Post("/test-email", h.TestEmail)

		r.Get("/orders/fast-delivery", h.FastDeliveryOrdersHandler)
	})

	return r
}
