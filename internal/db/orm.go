package db

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "infinite-experiment/paddock/internal/models/gorm"
)

// OpenPostgresORM opens the write pool used by the ingestion job.
func OpenPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the position_history table and its indexes,
// including the unique (driver_number, position, date) index.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&gormModels.PositionHistory{}); err != nil {
		return fmt.Errorf("migrate position_history: %w", err)
	}
	return nil
}
