package db

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestConnections(t *testing.T) *Connections {
	t.Helper()

	sqlDB, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	ormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return &Connections{SQL: sqlDB, ORM: ormDB}
}

func TestConnections_MigrateCreatesTable(t *testing.T) {
	conns := openTestConnections(t)
	defer conns.Close()

	require.NoError(t, conns.migrate(context.Background()))
	assert.True(t, conns.ORM.Migrator().HasTable("position_history"))
	assert.NoError(t, conns.Ping(context.Background()))
}

func TestConnections_FailedMigrateClosesBothPools(t *testing.T) {
	conns := openTestConnections(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, conns.migrate(ctx))

	assert.Error(t, conns.SQL.PingContext(context.Background()), "sqlx pool should be closed")
	ormSQL, err := conns.ORM.DB()
	require.NoError(t, err)
	assert.Error(t, ormSQL.PingContext(context.Background()), "gorm pool should be closed")
}
