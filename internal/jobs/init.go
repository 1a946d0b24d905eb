package jobs

import (
	"context"

	"infinite-experiment/paddock/internal/config"
	"infinite-experiment/paddock/internal/db/repositories"
	"infinite-experiment/paddock/internal/metrics"
	"infinite-experiment/paddock/internal/providers"
	"infinite-experiment/paddock/internal/services"
)

// InitializeJobs builds the position sync job and starts it in the background.
// The job stops when ctx is cancelled.
func InitializeJobs(
	ctx context.Context,
	cfg *config.Config,
	sessions services.SessionSource,
	provider providers.TelemetryProvider,
	historyRepo *repositories.PositionHistoryRepo,
	m *metrics.MetricsRegistry,
) *PositionSyncJob {
	mode := services.ModeFromConfig(cfg)
	reconciler := services.NewReconciler(historyRepo, mode, cfg.RecognisedTeams, m)

	job := NewPositionSyncJob(sessions, provider, reconciler, historyRepo, PositionSyncJobOptions{
		Interval: cfg.PollInterval,
		Timeout:  cfg.CycleTimeout,
		Metrics:  m,
	})

	go job.RunScheduled(ctx)

	return job
}
