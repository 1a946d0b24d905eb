package repositories

import (
	"context"
	"time"

	"infinite-experiment/paddock/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PositionHistoryRepo is the write side of position_history.
type PositionHistoryRepo struct {
	db *gormlib.DB
}

// NewPositionHistoryRepo creates a new position history repository
func NewPositionHistoryRepo(db *gormlib.DB) *PositionHistoryRepo {
	return &PositionHistoryRepo{db: db}
}

// Exists reports whether the (driver_number, position, date) tuple is stored.
func (r *PositionHistoryRepo) Exists(ctx context.Context, driverNumber, position int, date time.Time) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gorm.PositionHistory{}).
		Where("driver_number = ? AND position = ? AND date = ?", driverNumber, position, date.UTC()).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, storeErr("exists", err)
	}

	return count > 0, nil
}

// Insert appends rec. A duplicate tuple is reported as an error.
func (r *PositionHistoryRepo) Insert(ctx context.Context, rec *gorm.PositionHistory) error {
	rec.Date = rec.Date.UTC()
	return storeErr("insert", r.db.WithContext(ctx).Create(rec).Error)
}

// InsertIfAbsent appends rec unless its (driver_number, position, date) tuple
// is already stored. ON CONFLICT DO NOTHING
func (r *PositionHistoryRepo) InsertIfAbsent(ctx context.Context, rec *gorm.PositionHistory) (bool, error) {
	rec.Date = rec.Date.UTC()

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if result.Error != nil {
		return false, storeErr("insert if absent", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// CountBySession returns the number of stored rows for a session
func (r *PositionHistoryRepo) CountBySession(ctx context.Context, sessionKey int) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gorm.PositionHistory{}).
		Where("session_key = ?", sessionKey).
		Count(&count).Error

	return count, storeErr("count", err)
}
