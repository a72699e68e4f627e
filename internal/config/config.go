package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mandaraliyanage/ECDWA-Medisis/common/config"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/timewindow"
)

// ErrInvalid marks a configuration value the service cannot run with.
var ErrInvalid = errors.New("invalid configuration")

// Data sources
const (
	SourceAPI      = "api"
	SourcePostgres = "postgres"
)

// Refresh trigger modes
const (
	TriggerPolling = "polling"
	TriggerEvents  = "events"
	TriggerMQTT    = "mqtt"
)

// Config dashboard service configuration
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	Dashboard struct {
		// Where snapshots come from: "api" (remote monitoring API) or "postgres"
		DataSource string

		API struct {
			BaseURL    string
			Timeout    int // seconds
			RetryCount int
		}

		// What triggers a refresh: "polling", "events" (Redis Streams) or "mqtt"
		TriggerMode string

		Polling struct {
			Interval int // seconds
		}

		// Redis Streams refresh signals
		RefreshStream string
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int
		// Stream that receives a "snapshot.refreshed" entry after each refresh; empty disables it
		UpdatesStream string

		// MQTT refresh signals
		MQTTTopic string

		// Derived view cache in Redis
		Cache struct {
			Enabled   bool
			TTL       int // seconds
			KeyPrefix string
		}

		// XLSX export of each refreshed snapshot; empty Dir disables it
		Export struct {
			Dir string
			// Alert recency window: all, 24h, 7d or 30d
			AlertWindow string
			// Row order of both sheets; anything but "asc" is newest first
			SortDir string
		}

		// IANA zone for hour-of-day bucketing; empty means the process zone
		Timezone string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment and validates it
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database = config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "medisis",
		SSLMode:  "disable",
		MaxConns: 5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = config.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT = config.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "medisis-dashboard",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	d := &cfg.Dashboard
	d.DataSource = getEnv("DATA_SOURCE", SourceAPI)
	d.API.BaseURL = getEnv("API_BASE_URL", "http://localhost:8000/api")
	d.API.Timeout = getEnvInt("API_TIMEOUT_SECONDS", 10)
	d.API.RetryCount = getEnvInt("API_RETRY_COUNT", 2)

	d.TriggerMode = getEnv("DASHBOARD_TRIGGER_MODE", TriggerPolling)
	d.Polling.Interval = getEnvInt("DASHBOARD_POLL_INTERVAL", 30)
	d.RefreshStream = getEnv("DASHBOARD_REFRESH_STREAM", "dashboard:refresh")
	d.ConsumerGroup = getEnv("DASHBOARD_CONSUMER_GROUP", "dashboard-group")
	d.ConsumerName = getEnv("DASHBOARD_CONSUMER_NAME", "dashboard-1")
	d.BatchSize = getEnvInt("DASHBOARD_BATCH_SIZE", 10)
	d.UpdatesStream = getEnv("DASHBOARD_UPDATES_STREAM", "")
	d.MQTTTopic = getEnv("DASHBOARD_MQTT_TOPIC", "medisis/telemetry/+")

	d.Cache.Enabled = getEnv("DASHBOARD_CACHE_ENABLED", "true") == "true"
	d.Cache.TTL = getEnvInt("DASHBOARD_CACHE_TTL", 60)
	d.Cache.KeyPrefix = getEnv("DASHBOARD_CACHE_PREFIX", "dashboard")

	d.Export.Dir = getEnv("DASHBOARD_EXPORT_DIR", "")
	d.Export.AlertWindow = getEnv("DASHBOARD_EXPORT_ALERT_WINDOW", string(timewindow.All))
	d.Export.SortDir = getEnv("DASHBOARD_EXPORT_SORT_DIR", "desc")
	d.Timezone = getEnv("DASHBOARD_TIMEZONE", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Dashboard.DataSource {
	case SourceAPI, SourcePostgres:
	default:
		return fmt.Errorf("%w: unsupported data source %q", ErrInvalid, c.Dashboard.DataSource)
	}
	switch c.Dashboard.TriggerMode {
	case TriggerPolling, TriggerEvents, TriggerMQTT:
	default:
		return fmt.Errorf("%w: unsupported trigger mode %q", ErrInvalid, c.Dashboard.TriggerMode)
	}
	if c.Dashboard.Polling.Interval <= 0 {
		return fmt.Errorf("%w: polling interval must be positive", ErrInvalid)
	}
	if _, ok := timewindow.ParseWindow(c.Dashboard.Export.AlertWindow); !ok {
		return fmt.Errorf("%w: unsupported export alert window %q", ErrInvalid, c.Dashboard.Export.AlertWindow)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Location resolves Dashboard.Timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Dashboard.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Dashboard.Timezone)
}

// PollInterval returns the polling interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Dashboard.Polling.Interval) * time.Second
}

// APITimeout returns the API request timeout as a duration
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.Dashboard.API.Timeout) * time.Second
}

// CacheTTL returns the cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Dashboard.Cache.TTL) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
