package api

import (
	"time"

	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/config"
	"infinite-experiment/paddock/internal/db"
	"infinite-experiment/paddock/internal/db/repositories"
	"infinite-experiment/paddock/internal/metrics"
	"infinite-experiment/paddock/internal/providers"
	"infinite-experiment/paddock/internal/services"
)

type Repositories struct {
	History *repositories.PositionHistoryRepo
	Query   *repositories.PositionQueryRepo
}

type Services struct {
	Cache     common.CacheInterface
	Sessions  *services.SessionService
	Positions *services.PositionQueryService
	Speed     *services.SpeedService
}

type Dependencies struct {
	Conns    *db.Connections
	Provider providers.TelemetryProvider
	Metrics  *metrics.MetricsRegistry
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires repositories and services over already opened
// connections. The caller owns conns and cache and closes them on shutdown.
func InitDependencies(
	cfg *config.Config,
	conns *db.Connections,
	cache common.CacheInterface,
	provider providers.TelemetryProvider,
	m *metrics.MetricsRegistry,
) *Dependencies {
	repos := &Repositories{
		History: repositories.NewPositionHistoryRepo(conns.ORM),
		Query:   repositories.NewPositionQueryRepo(conns.SQL),
	}

	sessions := services.NewSessionService(provider, cache, services.SessionServiceOptions{
		Window:          cfg.SessionWindow(),
		SessionCacheTTL: cfg.SessionCacheTTL,
		DriverCacheTTL:  cfg.DriverCacheTTL,
		Metrics:         m,
	})

	svcs := &Services{
		Cache:     cache,
		Sessions:  sessions,
		Positions: services.NewPositionQueryService(sessions, repos.Query),
		Speed:     services.NewSpeedService(sessions, provider, cfg.RecognisedTeams, time.Minute),
	}

	return &Dependencies{
		Conns:    conns,
		Provider: provider,
		Metrics:  m,
		Repo:     repos,
		Services: svcs,
	}
}
