package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hotel-console-backend/internal/logger"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Sync       SyncConfig       `yaml:"sync"`
	Console    ConsoleConfig    `yaml:"console"`
	Auth       AuthConfig       `yaml:"auth"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Logging    logger.Config    `yaml:"logging"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`

	CacheTTL time.Duration `yaml:"-"`
}

// UpstreamConfig describes the REST service that owns parking and taxi data.
type UpstreamConfig struct {
	BaseURL        string            `yaml:"base_url"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	HTTPProxy      string            `yaml:"http_proxy"`
	ServiceToken   string            `yaml:"service_token"`
	Headers        map[string]string `yaml:"headers"`

	Timeout time.Duration `yaml:"-"`
}

// SyncConfig controls the background refresh of the vehicle activity snapshot.
type SyncConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`

	Interval time.Duration `yaml:"-"`
}

// ConsoleConfig holds presentation settings shared by the log view and exports.
type ConsoleConfig struct {
	Timezone string `yaml:"timezone"`
	Currency string `yaml:"currency"`

	Location *time.Location `yaml:"-"`
}

// AuthConfig holds the console session settings.
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`

	SessionTTL time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// Load reads the configuration from the given path. A .env file in the
// working directory, when present, is loaded into the environment first and
// environment variables override secrets from the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies environment overrides and defaults, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&c.Auth.JWTSecret, "CONSOLE_JWT_SECRET")
	override(&c.Upstream.ServiceToken, "UPSTREAM_SERVICE_TOKEN")
	override(&c.Upstream.BaseURL, "UPSTREAM_BASE_URL")
	override(&c.Database.DSN, "DATABASE_DSN")
	override(&c.Push.PublicKey, "VAPID_PUBLIC_KEY")
	override(&c.Push.PrivateKey, "VAPID_PRIVATE_KEY")
}

func (c *Config) applyDefaults() error {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 5
	}
	if c.Server.CacheTTLSeconds <= 0 {
		c.Server.CacheTTLSeconds = 30
	}
	c.Server.CacheTTL = time.Duration(c.Server.CacheTTLSeconds) * time.Second

	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "http://localhost:5000/api"
	}
	c.Upstream.BaseURL = strings.TrimRight(c.Upstream.BaseURL, "/")
	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = 30
	}
	c.Upstream.Timeout = time.Duration(c.Upstream.TimeoutSeconds) * time.Second

	if c.Sync.IntervalSeconds <= 0 {
		c.Sync.IntervalSeconds = 60
	}
	c.Sync.Interval = time.Duration(c.Sync.IntervalSeconds) * time.Second

	if c.Console.Timezone == "" {
		c.Console.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(c.Console.Timezone)
	if err != nil {
		return fmt.Errorf("config: console.timezone %q: %w", c.Console.Timezone, err)
	}
	c.Console.Location = loc
	if c.Console.Currency == "" {
		c.Console.Currency = "LKR"
	}

	if c.Auth.SessionTTLMinutes <= 0 {
		c.Auth.SessionTTLMinutes = 12 * 60
	}
	c.Auth.SessionTTL = time.Duration(c.Auth.SessionTTLMinutes) * time.Minute

	if c.Database.DSN == "" {
		c.Database.DSN = "file:console.db?cache=shared"
	}

	if c.Push.TTL <= 0 {
		c.Push.TTL = 3600
	}

	if c.WorkerPool.Size <= 0 {
		c.WorkerPool.Size = 1
	}
	return nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret (or CONSOLE_JWT_SECRET) is required")
	}
	if c.Sync.Enabled && c.Upstream.ServiceToken == "" {
		return errors.New("config: sync.enabled requires upstream.service_token (or UPSTREAM_SERVICE_TOKEN)")
	}
	if (c.Push.PublicKey == "") != (c.Push.PrivateKey == "") {
		return errors.New("config: push requires both vapid_public_key and vapid_private_key")
	}
	return nil
}
