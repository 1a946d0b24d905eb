package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"infinite-experiment/paddock/internal/api"
	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/config"
	"infinite-experiment/paddock/internal/constants"
	"infinite-experiment/paddock/internal/logging"
	"infinite-experiment/paddock/internal/middleware"
)

func RegisterRoutes(cfg *config.Config, deps *api.Dependencies, jobsHandler *api.JobsHandler, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondMessage(w, http.StatusNotFound, constants.MsgNotFound)
	})

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(deps.Conns, deps.Services.Cache, upSince))

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	RegisterAPIRoutes(r, handlers, jobsHandler, limiter)

	logging.Info("Router initialized", "cors_origins", cfg.CORSOrigins)
	return r
}
