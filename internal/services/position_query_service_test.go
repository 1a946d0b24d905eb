package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/paddock/internal/db/repositories"
	"infinite-experiment/paddock/internal/models/dtos"
	"infinite-experiment/paddock/internal/providers"
)

func seedPositions(t *testing.T) (*repositories.PositionQueryRepo, *repositories.PositionHistoryRepo) {
	t.Helper()
	db, sqlDB := setupTestDB(t)
	writer := repositories.NewPositionHistoryRepo(db)
	r := NewReconciler(writer, LiveMode{Window: 6 * time.Hour}, testTeams, nil)

	snapshots := [][]dtos.RawPosition{
		{
			{DriverNumber: 1, Position: 1, Date: t0},
			{DriverNumber: 44, Position: 2, Date: t0},
			{DriverNumber: 16, Position: 3, Date: t0},
		},
		{
			{DriverNumber: 44, Position: 1, Date: t0.Add(time.Minute)},
			{DriverNumber: 1, Position: 2, Date: t0.Add(time.Minute)},
		},
	}
	for _, snap := range snapshots {
		_, err := r.Reconcile(context.Background(), 9000, snap, testDrivers)
		require.NoError(t, err)
	}

	return repositories.NewPositionQueryRepo(sqlDB), writer
}

func TestPositionQueryService_CurrentPositions(t *testing.T) {
	reader, _ := seedPositions(t)
	svc := NewPositionQueryService(&fakeSessions{key: 9000}, reader)

	got, err := svc.CurrentPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, dtos.CurrentPosition{DriverNumber: 44, FullName: "Lewis HAMILTON", TeamName: "Mercedes", Position: 1}, got[0])
	assert.Equal(t, 1, got[1].DriverNumber)
	assert.Equal(t, 2, got[1].Position)
	assert.Equal(t, 16, got[2].DriverNumber)
}

func TestPositionQueryService_History(t *testing.T) {
	reader, _ := seedPositions(t)
	svc := NewPositionQueryService(&fakeSessions{key: 9000}, reader)

	got, err := svc.PositionHistory(context.Background(), 44)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Position)
	assert.Equal(t, 1, got[1].Position)
	assert.True(t, got[0].Date.Before(got[1].Date))

	none, err := svc.PositionHistory(context.Background(), 63)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPositionQueryService_DriversWithData(t *testing.T) {
	reader, _ := seedPositions(t)
	svc := NewPositionQueryService(&fakeSessions{key: 9000}, reader)

	got, err := svc.DriversWithData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dtos.DriverSummary{
		{DriverNumber: 16, FullName: "Charles LECLERC"},
		{DriverNumber: 44, FullName: "Lewis HAMILTON"},
		{DriverNumber: 1, FullName: "Max VERSTAPPEN"},
	}, got)
}

func TestPositionQueryService_NoActiveSession(t *testing.T) {
	reader, _ := seedPositions(t)
	svc := NewPositionQueryService(&fakeSessions{err: ErrNoActiveSession}, reader)

	positions, err := svc.CurrentPositions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, positions)
	assert.Empty(t, positions)

	drivers, err := svc.DriversWithData(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, drivers)
	assert.Empty(t, drivers)

	_, err = svc.PositionHistory(context.Background(), 44)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestPositionQueryService_UpstreamFailure(t *testing.T) {
	reader, _ := seedPositions(t)
	svc := NewPositionQueryService(&fakeSessions{err: &providers.ProviderError{Code: "NETWORK_ERROR"}}, reader)

	_, err := svc.CurrentPositions(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestPositionQueryService_OtherSessionInvisible(t *testing.T) {
	reader, _ := seedPositions(t)
	svc := NewPositionQueryService(&fakeSessions{key: 9001}, reader)

	got, err := svc.CurrentPositions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
