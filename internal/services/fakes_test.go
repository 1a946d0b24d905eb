package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"infinite-experiment/paddock/internal/models/dtos"
	gormModels "infinite-experiment/paddock/internal/models/gorm"
)

// fakeProvider is a scripted TelemetryProvider.
type fakeProvider struct {
	mu sync.Mutex

	sessions    []dtos.Session
	sessionsErr error
	positions   []dtos.RawPosition
	drivers     []dtos.Driver
	carData     func(sessionKey, driverNumber int, since time.Time) ([]dtos.CarData, error)

	sessionCalls int
	driverCalls  int
	carDataCalls int
}

func (f *fakeProvider) GetSessions(ctx context.Context) ([]dtos.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.sessions, f.sessionsErr
}

func (f *fakeProvider) GetPositions(ctx context.Context, sessionKey int) ([]dtos.RawPosition, error) {
	return f.positions, nil
}

func (f *fakeProvider) GetDrivers(ctx context.Context, sessionKey int) ([]dtos.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.driverCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.drivers, nil
}

func (f *fakeProvider) GetCarData(ctx context.Context, sessionKey, driverNumber int, since time.Time) ([]dtos.CarData, error) {
	f.mu.Lock()
	f.carDataCalls++
	f.mu.Unlock()
	if f.carData == nil {
		return nil, nil
	}
	return f.carData(sessionKey, driverNumber, since)
}

// fakeSessions is a fixed SessionSource and DriverSource.
type fakeSessions struct {
	key     int
	err     error
	drivers []dtos.Driver
}

func (f *fakeSessions) CurrentSessionKey(ctx context.Context) (int, error) {
	return f.key, f.err
}

func (f *fakeSessions) Drivers(ctx context.Context, sessionKey int) ([]dtos.Driver, error) {
	return f.drivers, nil
}

var (
	t0 = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	testTeams = []string{"Red Bull Racing", "Ferrari", "Mercedes"}

	testDrivers = []dtos.Driver{
		{SessionKey: 9000, DriverNumber: 1, FullName: "Max VERSTAPPEN", TeamName: "Red Bull Racing"},
		{SessionKey: 9000, DriverNumber: 16, FullName: "Charles LECLERC", TeamName: "Ferrari"},
		{SessionKey: 9000, DriverNumber: 44, FullName: "Lewis HAMILTON", TeamName: "Mercedes"},
		{SessionKey: 9000, DriverNumber: 99, FirstName: "Test", LastName: "DRIVER", TeamName: "Reserve"},
	}
)

func setupTestDB(t *testing.T) (*gorm.DB, *sqlx.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&gormModels.PositionHistory{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db, sqlx.NewDb(sqlDB, "sqlite3")
}
