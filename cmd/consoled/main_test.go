package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/db"
	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/store"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.Equal(t, 0, execute(cmd))
	assert.Equal(t, "consoled dev (commit: none, built: unknown)\n", out.String())
}

func TestConfigPath(t *testing.T) {
	cmd := newRootCmd()
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "./config/config.yaml", configPath(cmd))

	t.Setenv("CONFIG_PATH", "/etc/consoled.yaml")
	assert.Equal(t, "/etc/consoled.yaml", configPath(cmd))

	require.NoError(t, cmd.PersistentFlags().Set("config", "local.yaml"))
	assert.Equal(t, "local.yaml", configPath(cmd))
}

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	dsn := "file:" + filepath.Join(dir, "console.db")
	content := "console:\n  timezone: Asia/Colombo\n" +
		"auth:\n  jwt_secret: test\n" +
		"database:\n  dsn: " + dsn + "\n  max_open_conns: 1\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	gdb, err := db.Init(&cfg.Database)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	amount := 450.0
	exit := time.Date(2024, 3, 15, 5, 0, 0, 0, time.UTC)
	_, err = store.NewGormStore(gdb).ReplaceActivities(context.Background(), time.Now(), []model.VehicleActivity{
		{
			ID: "r1", VehicleNumber: "WP CAB-1234", VehicleType: model.VehicleCar, GuestName: "Doe, John",
			GuestRoom: "101", EntryTime: time.Date(2024, 3, 15, 2, 30, 0, 0, time.UTC),
			ExitTime: &exit, Status: model.StatusExited, TotalAmount: &amount,
		},
		{
			ID: "r2", VehicleNumber: "BAA-0001", VehicleType: model.VehicleBike, GuestName: "Jane Roe",
			GuestRoom: "202", EntryTime: time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC), Status: model.StatusParked,
		},
	})
	require.NoError(t, err)
	return path
}

func TestExportCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir)
	output := filepath.Join(dir, "exited.csv")

	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"export", "-c", path, "--status", "exited", "-o", output})
	require.Equal(t, 0, execute(cmd), stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `WP CAB-1234,car,"Doe, John",101,,15/03/2024 08:00,15/03/2024 10:30,2h 30m,450,exited`, lines[1])
	assert.Contains(t, stderr.String(), "Exported 1 of 2 records")
}

func TestExportCmd_RejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir)

	for _, args := range [][]string{
		{"export", "-c", path, "--format", "xlsx"},
		{"export", "-c", path, "--from", "15/03/2024"},
		{"export", "-c", filepath.Join(dir, "missing.yaml")},
	} {
		cmd := newRootCmd()
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		assert.Equal(t, 1, execute(cmd), args)
	}
}
