package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"infinite-experiment/paddock/internal/constants"
	"infinite-experiment/paddock/internal/models/dtos"
	"infinite-experiment/paddock/internal/models/gorm"
)

// PositionQueryRepo is the read side of position_history.
type PositionQueryRepo struct {
	db *sqlx.DB
}

func NewPositionQueryRepo(db *sqlx.DB) *PositionQueryRepo {
	return &PositionQueryRepo{db: db}
}

type positionRow struct {
	ID           uint64    `db:"id"`
	SessionKey   int       `db:"session_key"`
	DriverNumber int       `db:"driver_number"`
	FullName     string    `db:"full_name"`
	TeamName     string    `db:"team_name"`
	Position     int       `db:"position"`
	Date         time.Time `db:"date"`
}

// History returns every stored position of a driver in a session, oldest first.
func (r *PositionQueryRepo) History(ctx context.Context, driverNumber, sessionKey int) ([]dtos.PositionPoint, error) {
	points := []dtos.PositionPoint{}

	err := r.db.SelectContext(ctx, &points, r.db.Rebind(constants.GetPositionHistory), driverNumber, sessionKey)
	if err != nil {
		return nil, storeErr("history", err)
	}

	for i := range points {
		points[i].Date = points[i].Date.UTC()
	}
	return points, nil
}

// DistinctDrivers lists drivers with at least one stored position, by name.
func (r *PositionQueryRepo) DistinctDrivers(ctx context.Context, sessionKey int) ([]dtos.DriverSummary, error) {
	drivers := []dtos.DriverSummary{}

	err := r.db.SelectContext(ctx, &drivers, r.db.Rebind(constants.GetDriversWithPositionData), sessionKey)
	if err != nil {
		return nil, storeErr("distinct drivers", err)
	}

	return drivers, nil
}

// LatestPerDriver returns the most recent row of every driver in a session,
// ordered by position. If a driver has two rows at its latest instant the
// one written last wins.
func (r *PositionQueryRepo) LatestPerDriver(ctx context.Context, sessionKey int) ([]gorm.PositionHistory, error) {
	var rows []positionRow

	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.GetLatestPositionPerDriver), sessionKey, sessionKey)
	if err != nil {
		return nil, storeErr("latest per driver", err)
	}

	byDriver := make(map[int]positionRow, len(rows))
	for _, row := range rows {
		if cur, ok := byDriver[row.DriverNumber]; !ok || row.ID > cur.ID {
			byDriver[row.DriverNumber] = row
		}
	}

	latest := make([]gorm.PositionHistory, 0, len(byDriver))
	for _, row := range byDriver {
		latest = append(latest, gorm.PositionHistory{
			ID:           row.ID,
			SessionKey:   row.SessionKey,
			DriverNumber: row.DriverNumber,
			FullName:     row.FullName,
			TeamName:     row.TeamName,
			Position:     row.Position,
			Date:         row.Date.UTC(),
		})
	}

	sort.Slice(latest, func(i, j int) bool {
		if latest[i].Position != latest[j].Position {
			return latest[i].Position < latest[j].Position
		}
		return latest[i].DriverNumber < latest[j].DriverNumber
	})
	return latest, nil
}
