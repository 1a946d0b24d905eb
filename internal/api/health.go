package api

import (
	"context"
	"net/http"
	"time"

	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/models/entities"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(db Pinger, cache common.CacheInterface, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)

		// Check postgres
		pgStatus := entities.ServiceStatus{Status: entities.StatusOK, Details: "Postgres Connected"}
		if err := db.Ping(ctx); err != nil {
			pgStatus = entities.ServiceStatus{Status: entities.StatusDown, Details: err.Error()}
		}
		services["postgres"] = pgStatus

		cacheStatus := entities.ServiceStatus{Status: entities.StatusOK, Details: cache.Name() + " cache reachable"}
		if err := cache.Ping(ctx); err != nil {
			cacheStatus = entities.ServiceStatus{Status: entities.StatusDown, Details: err.Error()}
		}
		services["cache"] = cacheStatus

		overallStatus := entities.StatusOK
		code := http.StatusOK
		for _, svc := range services {
			if svc.Status != entities.StatusOK {
				overallStatus = entities.StatusDown
				code = http.StatusServiceUnavailable
				break
			}
		}

		common.RespondJSON(w, code, entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince.UTC(),
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		})
	}
}
