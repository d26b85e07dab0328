package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
auth:
  jwt_secret: test-secret
`

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "http://localhost:5000/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)
	assert.Equal(t, time.UTC, cfg.Console.Location)
	assert.Equal(t, "LKR", cfg.Console.Currency)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.False(t, cfg.Push.Enabled())
}

func TestParse_TrimsBaseURLAndLoadsTimezone(t *testing.T) {
	cfg, err := Parse([]byte(`
upstream:
  base_url: https://hotel.example.com/api/
console:
  timezone: Asia/Colombo
auth:
  jwt_secret: s
`))
	require.NoError(t, err)
	assert.Equal(t, "https://hotel.example.com/api", cfg.Upstream.BaseURL)
	assert.Equal(t, "Asia/Colombo", cfg.Console.Location.String())
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"missing jwt secret", `server: {port: 1}`},
		{"bad timezone", "auth: {jwt_secret: s}\nconsole: {timezone: Mars/Olympus}"},
		{"sync without token", "auth: {jwt_secret: s}\nsync: {enabled: true}"},
		{"half vapid pair", "auth: {jwt_secret: s}\npush: {vapid_public_key: pub}"},
		{"malformed yaml", "auth: [unterminated"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("CONSOLE_JWT_SECRET", "")
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_EnvironmentOverridesSecrets(t *testing.T) {
	t.Setenv("CONSOLE_JWT_SECRET", "from-env")
	t.Setenv("UPSTREAM_SERVICE_TOKEN", "svc-token")
	t.Setenv("DATABASE_DSN", "postgres://console@db/console")

	cfg, err := Parse([]byte("sync: {enabled: true}"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "svc-token", cfg.Upstream.ServiceToken)
	assert.Equal(t, "postgres://console@db/console", cfg.Database.DSN)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
