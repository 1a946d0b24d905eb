package services

import (
	"context"
	"fmt"
	"time"

	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/metrics"
	"infinite-experiment/paddock/internal/models/dtos"
	gormModels "infinite-experiment/paddock/internal/models/gorm"
)

// PositionWriter is the write side of the position store.
type PositionWriter interface {
	InsertIfAbsent(ctx context.Context, rec *gormModels.PositionHistory) (bool, error)
}

// Reasons a raw record does not become a stored row.
const (
	discardUnknownDriver   = "unknown_driver"
	discardUnrecognised    = "unrecognised_team"
	discardInvalidPosition = "invalid_position"
	discardDuplicate       = "duplicate"
)

// Reconciler turns a position snapshot into new position_history rows.
type Reconciler struct {
	store   PositionWriter
	mode    IngestionMode
	teams   map[string]struct{}
	metrics *metrics.MetricsRegistry
	now     func() time.Time
}

// NewReconciler builds a reconciler for the recognised teams. m may be nil.
func NewReconciler(store PositionWriter, mode IngestionMode, teams []string, m *metrics.MetricsRegistry) *Reconciler {
	return &Reconciler{
		store:   store,
		mode:    mode,
		teams:   common.TeamSet(teams),
		metrics: m,
		now:     time.Now,
	}
}

// Mode returns the ingestion strategy in use.
func (r *Reconciler) Mode() IngestionMode {
	return r.mode
}

// Reconcile filters raw to recognised drivers, lets the ingestion mode pick
// the candidates and appends every candidate whose (driver, position, date)
// tuple is not stored yet. It returns the rows actually inserted. On a store
// error the rows inserted so far are returned with the error; the rest are
// left for the next cycle.
func (r *Reconciler) Reconcile(ctx context.Context, sessionKey int, raw []dtos.RawPosition, drivers []dtos.Driver) ([]gormModels.PositionHistory, error) {
	lookup := make(map[int]dtos.Driver, len(drivers))
	for _, d := range drivers {
		lookup[d.DriverNumber] = d
	}

	eligible := make([]dtos.RawPosition, 0, len(raw))
	for _, p := range raw {
		d, ok := lookup[p.DriverNumber]
		switch {
		case !ok:
			r.discard(discardUnknownDriver)
		case !r.recognised(d.TeamName):
			r.discard(discardUnrecognised)
		case p.Position < 1:
			r.discard(discardInvalidPosition)
		default:
			eligible = append(eligible, p)
		}
	}

	candidates := r.mode.Select(eligible, r.now())

	inserted := make([]gormModels.PositionHistory, 0, len(candidates))
	for _, c := range candidates {
		d := lookup[c.DriverNumber]
		rec := gormModels.PositionHistory{
			SessionKey:   sessionKey,
			DriverNumber: c.DriverNumber,
			FullName:     d.DisplayName(),
			TeamName:     d.TeamName,
			Position:     c.Position,
			Date:         normalizeDate(c.Date),
		}

		ok, err := r.store.InsertIfAbsent(ctx, &rec)
		if err != nil {
			return inserted, fmt.Errorf("insert position of driver %d: %w", c.DriverNumber, err)
		}
		if !ok {
			r.discard(discardDuplicate)
			continue
		}

		inserted = append(inserted, rec)
		if r.metrics != nil {
			r.metrics.PositionsInserted.Inc()
		}
	}

	return inserted, nil
}

func (r *Reconciler) recognised(team string) bool {
	_, ok := r.teams[team]
	return ok
}

func (r *Reconciler) discard(reason string) {
	if r.metrics != nil {
		r.metrics.PositionsDiscarded.WithLabelValues(reason).Inc()
	}
}

// normalizeDate stores UTC at microsecond precision, the resolution of a
// Postgres timestamp, so a re-read tuple compares equal to the written one.
func normalizeDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
