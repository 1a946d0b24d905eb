package repositories

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "infinite-experiment/paddock/internal/models/gorm"
)

// setupTestDB opens an in-memory SQLite database shared by a GORM handle and
// a sqlx handle. The pool is pinned to one connection because every new
// connection to ":memory:" would see an empty database.
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
