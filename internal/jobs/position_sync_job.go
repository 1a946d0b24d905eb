package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"infinite-experiment/paddock/internal/constants"
	"infinite-experiment/paddock/internal/logging"
	"infinite-experiment/paddock/internal/metrics"
	"infinite-experiment/paddock/internal/models/dtos"
	"infinite-experiment/paddock/internal/providers"
	"infinite-experiment/paddock/internal/services"
)

// RowCounter reports how many position rows a session has stored.
type RowCounter interface {
	CountBySession(ctx context.Context, sessionKey int) (int64, error)
}

// PositionSyncJob polls the upstream position snapshot of the current session
// and appends the new rows to position_history.
type PositionSyncJob struct {
	sessions   services.SessionSource
	provider   providers.TelemetryProvider
	reconciler *services.Reconciler
	counter    RowCounter
	metrics    *metrics.MetricsRegistry
	interval   time.Duration
	timeout    time.Duration

	// running serialises cycles; a tick that finds it held is skipped.
	running sync.Mutex

	mu     sync.RWMutex
	status dtos.SyncStatus

	done chan struct{}
}

// PositionSyncJobOptions configures a PositionSyncJob.
type PositionSyncJobOptions struct {
	Interval time.Duration
	// Timeout bounds one cycle, upstream fetches included.
	Timeout time.Duration
	Metrics *metrics.MetricsRegistry
}

func NewPositionSyncJob(
	sessions services.SessionSource,
	provider providers.TelemetryProvider,
	reconciler *services.Reconciler,
	counter RowCounter,
	opts PositionSyncJobOptions,
) *PositionSyncJob {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &PositionSyncJob{
		sessions:   sessions,
		provider:   provider,
		reconciler: reconciler,
		counter:    counter,
		metrics:    opts.Metrics,
		interval:   opts.Interval,
		timeout:    opts.Timeout,
		done:       make(chan struct{}),
		status: dtos.SyncStatus{
			Job:      constants.JobPositionSync,
			Mode:     reconciler.Mode().Name(),
			Interval: opts.Interval.String(),
		},
	}
}

// Run executes one sync cycle, waiting for a cycle in progress to finish.
func (j *PositionSyncJob) Run(ctx context.Context) error {
	j.running.Lock()
	defer j.running.Unlock()
	return j.cycle(ctx)
}

// TryRun executes one sync cycle unless another one is still running, in
// which case it returns false straight away.
func (j *PositionSyncJob) TryRun(ctx context.Context) (bool, error) {
	if !j.running.TryLock() {
		j.mu.Lock()
		j.status.TotalSkipped++
		j.mu.Unlock()
		if j.metrics != nil {
			j.metrics.SyncSkippedTotal.WithLabelValues(constants.JobPositionSync).Inc()
		}
		logging.Warn("Position sync still running, skipping tick", "job", constants.JobPositionSync)
		return false, nil
	}
	defer j.running.Unlock()
	return true, j.cycle(ctx)
}

// RunScheduled runs a cycle immediately and then once per interval until ctx
// is cancelled. Ticks do not queue up behind a slow cycle.
func (j *PositionSyncJob) RunScheduled(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logging.Info("Position sync scheduled",
		"interval", j.interval.String(),
		"mode", j.reconciler.Mode().Name())

	if _, err := j.TryRun(ctx); err != nil {
		logging.Error("Position sync initial run failed", "error", err.Error())
	}

	var wg sync.WaitGroup
	for {
		select {
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := j.TryRun(ctx); err != nil {
					logging.Error("Position sync run failed", "error", err.Error())
				}
			}()
		case <-ctx.Done():
			wg.Wait()
			logging.Info("Position sync stopped")
			return
		}
	}
}

// Wait blocks until RunScheduled has returned.
func (j *PositionSyncJob) Wait() {
	<-j.done
}

func (j *PositionSyncJob) cycle(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()

	runID := uuid.NewString()
	start := time.Now()
	log := logging.WithComponent("position_sync").With("run_id", runID)

	j.mu.Lock()
	j.status.Running = true
	j.mu.Unlock()

	sessionKey, inserted, err := j.sync(ctx)

	duration := time.Since(start)
	j.record(runID, start, duration, sessionKey, inserted, err)

	switch {
	case errors.Is(err, services.ErrNoActiveSession):
		log.Infow("No active race session, nothing to sync")
		return nil
	case err != nil:
		log.Errorw("Position sync failed",
			"session_key", sessionKey,
			"inserted", inserted,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error())
		return err
	}

	log.Infow("Position sync completed",
		"session_key", sessionKey,
		"inserted", inserted,
		"duration_ms", duration.Milliseconds())
	return nil
}

// sync resolves the session, fetches positions and drivers concurrently and
// reconciles them. The inserted count is valid even when err is not nil.
func (j *PositionSyncJob) sync(ctx context.Context) (int, int, error) {
	sessionKey, err := j.sessions.CurrentSessionKey(ctx)
	if err != nil {
		return 0, 0, err
	}

	var (
		raw     []dtos.RawPosition
		drivers []dtos.Driver
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = j.provider.GetPositions(gctx, sessionKey)
		if err != nil {
			return fmt.Errorf("fetch positions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		drivers, err = j.provider.GetDrivers(gctx, sessionKey)
		if err != nil {
			return fmt.Errorf("fetch drivers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return sessionKey, 0, err
	}

	inserted, err := j.reconciler.Reconcile(ctx, sessionKey, raw, drivers)
	return sessionKey, len(inserted), err
}

func (j *PositionSyncJob) record(runID string, start time.Time, duration time.Duration, sessionKey, inserted int, err error) {
	result := "success"
	switch {
	case errors.Is(err, services.ErrNoActiveSession):
		result = "no_session"
	case err != nil:
		result = "error"
	}

	if j.metrics != nil {
		j.metrics.SyncRunsTotal.WithLabelValues(constants.JobPositionSync, result).Inc()
		j.metrics.SyncJobDuration.WithLabelValues(constants.JobPositionSync).Observe(duration.Seconds())
		if err == nil {
			j.metrics.LastSuccessfulSyncTS.Set(float64(start.Unix()))
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.status.Running = false
	j.status.LastRunID = runID
	at := start.UTC()
	j.status.LastRunAt = &at
	j.status.LastDurationMs = duration.Milliseconds()
	j.status.LastSessionKey = sessionKey
	j.status.LastInserted = inserted
	j.status.LastError = ""
	if err != nil && result == "error" {
		j.status.LastError = err.Error()
	}
	j.status.TotalRuns++
	j.status.TotalInserted += int64(inserted)
}

// Status returns a snapshot of the job state, with the row count of the last
// synced session.
func (j *PositionSyncJob) Status(ctx context.Context) dtos.SyncStatus {
	j.mu.RLock()
	status := j.status
	j.mu.RUnlock()

	if status.LastSessionKey > 0 && j.counter != nil {
		n, err := j.counter.CountBySession(ctx, status.LastSessionKey)
		if err != nil {
			logging.Warn("Failed to count stored positions", "session_key", status.LastSessionKey, "error", err.Error())
		} else {
			status.StoredRows = n
		}
	}
	return status
}
