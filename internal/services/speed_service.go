package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/models/dtos"
	"infinite-experiment/paddock/internal/providers"
)

// SpeedSessions is what the speed service needs to know about sessions.
type SpeedSessions interface {
	SessionSource
	DriverSource
}

// SpeedService reads the latest car telemetry straight from upstream; speed
// samples are not persisted.
type SpeedService struct {
	sessions SpeedSessions
	provider providers.TelemetryProvider
	teams    map[string]struct{}
	lookback time.Duration
	now      func() time.Time
}

func NewSpeedService(sessions SpeedSessions, provider providers.TelemetryProvider, teams []string, lookback time.Duration) *SpeedService {
	if lookback <= 0 {
		lookback = time.Minute
	}
	return &SpeedService{
		sessions: sessions,
		provider: provider,
		teams:    common.TeamSet(teams),
		lookback: lookback,
		now:      time.Now,
	}
}

// CurrentSpeed returns the most recent speed sample of a driver. Recent
// samples are tried first; a replayed or finished session has none, so the
// driver's full sample list is the fallback.
func (s *SpeedService) CurrentSpeed(ctx context.Context, driverNumber int) (*dtos.DriverSpeed, error) {
	sessionKey, err := s.sessions.CurrentSessionKey(ctx)
	if err != nil {
		return nil, err
	}

	drivers, err := s.sessions.Drivers(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	driver, ok := findDriver(drivers, driverNumber)
	if !ok {
		return nil, fmt.Errorf("%w: driver %d in session %d", ErrDriverNotFound, driverNumber, sessionKey)
	}

	samples, err := s.provider.GetCarData(ctx, sessionKey, driverNumber, s.now().Add(-s.lookback))
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		samples, err = s.provider.GetCarData(ctx, sessionKey, driverNumber, time.Time{})
		if err != nil {
			return nil, err
		}
	}

	latest, ok := latestSamples(samples)[driverNumber]
	if !ok {
		return nil, fmt.Errorf("%w: no car data for driver %d", ErrDriverNotFound, driverNumber)
	}

	return &dtos.DriverSpeed{
		DriverNumber: driverNumber,
		FullName:     driver.DisplayName(),
		Speed:        latest.Speed,
		Date:         latest.Date.UTC(),
	}, nil
}

// SpeedBoard returns the latest speed of every recognised driver with recent
// samples, fastest first. No current session yields an empty list.
func (s *SpeedService) SpeedBoard(ctx context.Context) ([]dtos.DriverSpeed, error) {
	sessionKey, err := s.sessions.CurrentSessionKey(ctx)
	if errors.Is(err, ErrNoActiveSession) {
		return []dtos.DriverSpeed{}, nil
	}
	if err != nil {
		return nil, err
	}

	drivers, err := s.sessions.Drivers(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	samples, err := s.provider.GetCarData(ctx, sessionKey, 0, s.now().Add(-s.lookback))
	if err != nil {
		return nil, err
	}
	latest := latestSamples(samples)

	board := make([]dtos.DriverSpeed, 0, len(drivers))
	for _, d := range drivers {
		if _, ok := s.teams[d.TeamName]; !ok {
			continue
		}
		sample, ok := latest[d.DriverNumber]
		if !ok {
			continue
		}
		board = append(board, dtos.DriverSpeed{
			DriverNumber: d.DriverNumber,
			FullName:     d.DisplayName(),
			Speed:        sample.Speed,
			Date:         sample.Date.UTC(),
		})
	}

	sort.Slice(board, func(i, j int) bool {
		if board[i].Speed != board[j].Speed {
			return board[i].Speed > board[j].Speed
		}
		return board[i].DriverNumber < board[j].DriverNumber
	})
	return board, nil
}

func findDriver(drivers []dtos.Driver, driverNumber int) (dtos.Driver, bool) {
	for _, d := range drivers {
		if d.DriverNumber == driverNumber {
			return d, true
		}
	}
	return dtos.Driver{}, false
}

func latestSamples(samples []dtos.CarData) map[int]dtos.CarData {
	latest := make(map[int]dtos.CarData)
	for _, c := range samples {
		if cur, ok := latest[c.DriverNumber]; !ok || c.Date.After(cur.Date) {
			latest[c.DriverNumber] = c
		}
	}
	return latest
}
