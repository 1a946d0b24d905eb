package services

import (
	"context"
	"errors"

	"infinite-experiment/paddock/internal/models/dtos"
	gormModels "infinite-experiment/paddock/internal/models/gorm"
)

// PositionReader is the read side of the position store.
type PositionReader interface {
	History(ctx context.Context, driverNumber, sessionKey int) ([]dtos.PositionPoint, error)
	DistinctDrivers(ctx context.Context, sessionKey int) ([]dtos.DriverSummary, error)
	LatestPerDriver(ctx context.Context, sessionKey int) ([]gormModels.PositionHistory, error)
}

// PositionQueryService answers the dashboard's position reads for the
// current session.
type PositionQueryService struct {
	sessions SessionSource
	reader   PositionReader
}

func NewPositionQueryService(sessions SessionSource, reader PositionReader) *PositionQueryService {
	return &PositionQueryService{sessions: sessions, reader: reader}
}

// CurrentPositions returns the latest position of every driver, leader
// first. No current session yields an empty list.
func (s *PositionQueryService) CurrentPositions(ctx context.Context) ([]dtos.CurrentPosition, error) {
	sessionKey, err := s.sessions.CurrentSessionKey(ctx)
	if errors.Is(err, ErrNoActiveSession) {
		return []dtos.CurrentPosition{}, nil
	}
	if err != nil {
		return nil, err
	}

	latest, err := s.reader.LatestPerDriver(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.CurrentPosition, 0, len(latest))
	for _, rec := range latest {
		out = append(out, dtos.CurrentPosition{
			DriverNumber: rec.DriverNumber,
			FullName:     rec.FullName,
			TeamName:     rec.TeamName,
			Position:     rec.Position,
		})
	}
	return out, nil
}

// PositionHistory returns the chart points of one driver, oldest first.
func (s *PositionQueryService) PositionHistory(ctx context.Context, driverNumber int) ([]dtos.PositionPoint, error) {
	sessionKey, err := s.sessions.CurrentSessionKey(ctx)
	if err != nil {
		return nil, err
	}
	return s.reader.History(ctx, driverNumber, sessionKey)
}

// DriversWithData lists drivers that have stored positions, by name.
// No current session yields an empty list.
func (s *PositionQueryService) DriversWithData(ctx context.Context) ([]dtos.DriverSummary, error) {
	sessionKey, err := s.sessions.CurrentSessionKey(ctx)
	if errors.Is(err, ErrNoActiveSession) {
		return []dtos.DriverSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.reader.DistinctDrivers(ctx, sessionKey)
}
