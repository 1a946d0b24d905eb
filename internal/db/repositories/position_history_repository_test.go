package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gormModels "infinite-experiment/paddock/internal/models/gorm"
)

var t0 = time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

func record(session, driver, pos int, date time.Time, name string) *gormModels.PositionHistory {
	return &gormModels.PositionHistory{
		SessionKey:   session,
		DriverNumber: driver,
		FullName:     name,
		TeamName:     "Mercedes",
		Position:     pos,
		Date:         date,
	}
}

func TestPositionHistoryRepo_InsertIfAbsent(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewPositionHistoryRepo(db)
	ctx := context.Background()

	inserted, err := repo.InsertIfAbsent(ctx, record(9472, 44, 1, t0, "Lewis HAMILTON"))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, record(9472, 44, 1, t0, "Lewis HAMILTON"))
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate tuple must not be inserted")

	// Same driver and date, different position is a new fact.
	inserted, err = repo.InsertIfAbsent(ctx, record(9472, 44, 2, t0, "Lewis HAMILTON"))
	require.NoError(t, err)
	assert.True(t, inserted)

	count, err := repo.CountBySession(ctx, 9472)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPositionHistoryRepo_Exists(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewPositionHistoryRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record(9472, 44, 1, t0, "Lewis HAMILTON")))

	exists, err := repo.Exists(ctx, 44, 1, t0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, 44, 1, t0.Add(time.Millisecond))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.Exists(ctx, 63, 1, t0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPositionHistoryRepo_InsertDuplicateFails(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewPositionHistoryRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record(9472, 44, 1, t0, "Lewis HAMILTON")))

	err := repo.Insert(ctx, record(9472, 44, 1, t0, "Lewis HAMILTON"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "insert", storeErr.Op)
}

func TestPositionHistoryRepo_ClosedDatabase(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewPositionHistoryRepo(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.InsertIfAbsent(context.Background(), record(9472, 44, 1, t0, "Lewis HAMILTON"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
