package db

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"infinite-experiment/paddock/internal/logging"
)

// Connections owns both database pools for the lifetime of the process.
// Open it once at startup and Close it on shutdown.
type Connections struct {
	SQL *sqlx.DB
	ORM *gorm.DB
}

// Open connects both pools and runs migrations.
func Open(ctx context.Context, dsn string) (*Connections, error) {
	sqlDB, err := OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	logging.Info("Connected to Postgres (sqlx)")

	ormDB, err := OpenPostgresORM(dsn)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logging.Info("Connected to Postgres (GORM)")

	conns := &Connections{SQL: sqlDB, ORM: ormDB}
	if err := conns.migrate(ctx); err != nil {
		return nil, err
	}
	return conns, nil
}

// migrate runs migrations and releases both pools if they fail.
func (c *Connections) migrate(ctx context.Context) error {
	if err := Migrate(ctx, c.ORM); err != nil {
		_ = c.Close()
		return err
	}
	return nil
}

// Ping checks the read pool; used by the health check.
func (c *Connections) Ping(ctx context.Context) error {
	return c.SQL.PingContext(ctx)
}

// Close releases both pools.
func (c *Connections) Close() error {
	var errs []error
	if c.SQL != nil {
		errs = append(errs, c.SQL.Close())
	}
	if c.ORM != nil {
		if sqlDB, err := c.ORM.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
