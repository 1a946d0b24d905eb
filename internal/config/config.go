// Package config holds the process configuration for paddock.
//
// Values are layered: compiled defaults, then an optional YAML file named by
// PADDOCK_CONFIG, then PADDOCK_* environment variables.
package config

import (
	"fmt"
	"time"
)

const (
	IngestModeLive      = "live"
	IngestModeSimulated = "simulated"
)

// Config contains every tunable of the server and the ingestion job.
type Config struct {
	AppEnv   string `koanf:"app_env"`
	HTTPAddr string `koanf:"http_addr"`

	// Postgres
	PGHost     string `koanf:"pg_host"`
	PGPort     string `koanf:"pg_port"`
	PGUser     string `koanf:"pg_user"`
	PGPassword string `koanf:"pg_password"`
	PGDB       string `koanf:"pg_db"`
	PGSSLMode  string `koanf:"pg_sslmode"`

	// Redis is optional. An empty host keeps the cache in process memory.
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// Upstream telemetry API
	OpenF1BaseURL string        `koanf:"openf1_base_url"`
	OpenF1Timeout time.Duration `koanf:"openf1_timeout"`
	OpenF1RPS     float64       `koanf:"openf1_rps"`

	// Ingestion
	PollInterval      time.Duration `koanf:"poll_interval"`
	CycleTimeout      time.Duration `koanf:"cycle_timeout"`
	IngestMode        string        `koanf:"ingest_mode"`
	LiveWindow        time.Duration `koanf:"live_window"`
	SimWindowDays     int           `koanf:"sim_window_days"`
	SimTimestampCount int           `koanf:"sim_timestamp_count"`
	RecognisedTeams   []string      `koanf:"recognised_teams"`

	// Read side
	SessionCacheTTL time.Duration `koanf:"session_cache_ttl"`
	DriverCacheTTL  time.Duration `koanf:"driver_cache_ttl"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitRPS    float64       `koanf:"rate_limit_rps"`
	RateLimitBurst  int           `koanf:"rate_limit_burst"`
}

// DefaultTeams is the constructor allow-list used when none is configured.
var DefaultTeams = []string{
	"Red Bull Racing",
	"Ferrari",
	"McLaren",
	"Mercedes",
	"Aston Martin",
	"Alpine",
	"Williams",
	"Haas F1 Team",
	"Racing Bulls",
	"Kick Sauber",
}

// New returns a Config populated with defaults.
func New() *Config {
	teams := make([]string, len(DefaultTeams))
	copy(teams, DefaultTeams)

	return &Config{
		AppEnv:            "development",
		HTTPAddr:          ":3001",
		PGHost:            "localhost",
		PGPort:            "5432",
		PGUser:            "postgres",
		PGDB:              "paddock",
		PGSSLMode:         "disable",
		RedisPort:         "6379",
		OpenF1BaseURL:     "https://api.openf1.org/v1",
		OpenF1Timeout:     10 * time.Second,
		OpenF1RPS:         3,
		PollInterval:      3 * time.Second,
		CycleTimeout:      10 * time.Second,
		IngestMode:        IngestModeLive,
		LiveWindow:        6 * time.Hour,
		SimWindowDays:     7,
		SimTimestampCount: 5,
		RecognisedTeams:   teams,
		SessionCacheTTL:   30 * time.Second,
		DriverCacheTTL:    5 * time.Minute,
		CORSOrigins:       []string{"http://localhost:5173", "http://localhost:3000"},
		RateLimitRPS:      10,
		RateLimitBurst:    20,
	}
}

// PostgresDSN builds the connection string shared by sqlx and GORM.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB, c.PGSSLMode)
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// SessionWindow is how far back an ended session still counts as current.
func (c *Config) SessionWindow() time.Duration {
	if c.IngestMode == IngestModeSimulated {
		return time.Duration(c.SimWindowDays) * 24 * time.Hour
	}
	return c.LiveWindow
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.HTTPAddr == "":
		return fmt.Errorf("%w: http_addr must not be empty", ErrInvalidConfig)
	case c.OpenF1BaseURL == "":
		return fmt.Errorf("%w: openf1_base_url must not be empty", ErrInvalidConfig)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	case c.CycleTimeout <= 0:
		return fmt.Errorf("%w: cycle_timeout must be positive", ErrInvalidConfig)
	case c.IngestMode != IngestModeLive && c.IngestMode != IngestModeSimulated:
		return fmt.Errorf("%w: ingest_mode must be %q or %q, got %q",
			ErrInvalidConfig, IngestModeLive, IngestModeSimulated, c.IngestMode)
	case c.LiveWindow <= 0:
		return fmt.Errorf("%w: live_window must be positive", ErrInvalidConfig)
	case c.SimWindowDays <= 0:
		return fmt.Errorf("%w: sim_window_days must be positive", ErrInvalidConfig)
	case c.SimTimestampCount <= 0:
		return fmt.Errorf("%w: sim_timestamp_count must be positive", ErrInvalidConfig)
	case len(c.RecognisedTeams) == 0:
		return fmt.Errorf("%w: recognised_teams must not be empty", ErrInvalidConfig)
	case c.OpenF1RPS <= 0:
		return fmt.Errorf("%w: openf1_rps must be positive", ErrInvalidConfig)
	}
	return nil
}
