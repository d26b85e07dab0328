package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/model"
)

func TestDialector(t *testing.T) {
	testCases := []struct {
		dsn        string
		isPostgres bool
	}{
		{dsn: "postgres://console:pw@db:5432/console?sslmode=disable", isPostgres: true},
		{dsn: "postgresql://db/console", isPostgres: true},
		{dsn: "host=db user=console dbname=console sslmode=disable", isPostgres: true},
		{dsn: "file:console.db?cache=shared", isPostgres: false},
		{dsn: ":memory:", isPostgres: false},
	}

	for _, tc := range testCases {
		t.Run(tc.dsn, func(t *testing.T) {
			d, isPostgres := Dialector(tc.dsn)
			assert.Equal(t, tc.isPostgres, isPostgres)
			if tc.isPostgres {
				assert.Equal(t, "postgres", d.Name())
			} else {
				assert.Equal(t, "sqlite", d.Name())
			}
		})
	}
}

func TestInit_Sqlite(t *testing.T) {
	gdb, err := Init(&config.DatabaseConfig{DSN: "file::memory:", MaxOpenConns: 1})
	require.NoError(t, err)

	for _, table := range []any{&model.ActivityRow{}, &model.PushSubscription{}, &model.WatchedVehicle{}} {
		assert.True(t, gdb.Migrator().HasTable(table))
	}
}
