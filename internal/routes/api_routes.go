package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/paddock/internal/api"
	"infinite-experiment/paddock/internal/middleware"
)

// RegisterAPIRoutes registers the dashboard API under /api.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, jobsHandler *api.JobsHandler, limiter *middleware.RateLimiter) {
	r.Route("/api", func(a chi.Router) {
		a.Use(limiter.Middleware)

		a.Get("/current_positions", handlers.CurrentPositions())
		a.Get("/positions/history/{driverNumber}", handlers.PositionHistory())
		a.Get("/drivers_with_position_data", handlers.DriversWithPositionData())

		a.Get("/current_speed/{driverNumber}", handlers.CurrentSpeed())
		a.Get("/current_speeds", handlers.CurrentSpeeds())

		a.Get("/jobs/status", jobsHandler.Status())
	})
}
