package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected DB_HOST default 'localhost', got '%s'", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected DB_PORT default 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.Database != "medisis" {
		t.Errorf("Expected DB_NAME default 'medisis', got '%s'", cfg.Database.Database)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected REDIS_ADDR default 'localhost:6379', got '%s'", cfg.Redis.Addr)
	}
	if cfg.Dashboard.DataSource != SourceAPI {
		t.Errorf("Expected DATA_SOURCE default 'api', got '%s'", cfg.Dashboard.DataSource)
	}
	if cfg.Dashboard.TriggerMode != TriggerPolling {
		t.Errorf("Expected DASHBOARD_TRIGGER_MODE default 'polling', got '%s'", cfg.Dashboard.TriggerMode)
	}
	if cfg.PollInterval() != 30*time.Second {
		t.Errorf("Expected poll interval 30s, got %v", cfg.PollInterval())
	}
	if !cfg.Dashboard.Cache.Enabled {
		t.Errorf("Expected cache enabled by default")
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("Expected cache TTL 60s, got %v", cfg.CacheTTL())
	}
	if cfg.Dashboard.Export.Dir != "" {
		t.Errorf("Expected export disabled by default, got '%s'", cfg.Dashboard.Export.Dir)
	}
	if cfg.Dashboard.Export.AlertWindow != "all" {
		t.Errorf("Expected DASHBOARD_EXPORT_ALERT_WINDOW default 'all', got '%s'", cfg.Dashboard.Export.AlertWindow)
	}
	if cfg.Dashboard.Export.SortDir != "desc" {
		t.Errorf("Expected DASHBOARD_EXPORT_SORT_DIR default 'desc', got '%s'", cfg.Dashboard.Export.SortDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_ExportSettings(t *testing.T) {
	os.Clearenv()
	t.Setenv("DASHBOARD_EXPORT_DIR", "/tmp/medisis")
	t.Setenv("DASHBOARD_EXPORT_ALERT_WINDOW", "7D")
	t.Setenv("DASHBOARD_EXPORT_SORT_DIR", "asc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Dashboard.Export.Dir != "/tmp/medisis" {
		t.Errorf("Expected export dir '/tmp/medisis', got '%s'", cfg.Dashboard.Export.Dir)
	}
	if cfg.Dashboard.Export.AlertWindow != "7D" {
		t.Errorf("Expected export alert window '7D', got '%s'", cfg.Dashboard.Export.AlertWindow)
	}
	if cfg.Dashboard.Export.SortDir != "asc" {
		t.Errorf("Expected export sort dir 'asc', got '%s'", cfg.Dashboard.Export.SortDir)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DATA_SOURCE", "postgres")
	t.Setenv("DASHBOARD_TRIGGER_MODE", "events")
	t.Setenv("DASHBOARD_POLL_INTERVAL", "5")
	t.Setenv("DASHBOARD_CACHE_ENABLED", "false")
	t.Setenv("DASHBOARD_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Host != "test-host" {
		t.Errorf("Expected DB_HOST 'test-host', got '%s'", cfg.Database.Host)
	}
	if cfg.Database.Port != 6543 {
		t.Errorf("Expected DB_PORT 6543, got %d", cfg.Database.Port)
	}
	if cfg.Dashboard.DataSource != SourcePostgres {
		t.Errorf("Expected DATA_SOURCE 'postgres', got '%s'", cfg.Dashboard.DataSource)
	}
	if cfg.Dashboard.TriggerMode != TriggerEvents {
		t.Errorf("Expected DASHBOARD_TRIGGER_MODE 'events', got '%s'", cfg.Dashboard.TriggerMode)
	}
	if cfg.PollInterval() != 5*time.Second {
		t.Errorf("Expected poll interval 5s, got %v", cfg.PollInterval())
	}
	if cfg.Dashboard.Cache.Enabled {
		t.Errorf("Expected cache disabled")
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC location, got %v (%v)", loc, err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL 'debug', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"DATA_SOURCE":                   "ftp",
		"DASHBOARD_TRIGGER_MODE":        "cron",
		"DASHBOARD_TIMEZONE":            "Mars/Olympus",
		"DASHBOARD_POLL_INTERVAL":       "0",
		"DASHBOARD_EXPORT_ALERT_WINDOW": "1y",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid for %s=%s, got %v", key, value, err)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	if value := getEnv("TEST_VAR", "default"); value != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", value)
	}
	if value := getEnv("NON_EXISTENT_VAR", "default-value"); value != "default-value" {
		t.Errorf("Expected 'default-value', got '%s'", value)
	}
	if value := getEnvInt("NON_EXISTENT_VAR", 7); value != 7 {
		t.Errorf("Expected 7, got %d", value)
	}
}

func TestAPITimeoutAndUpdatesStream(t *testing.T) {
	os.Clearenv()
	t.Setenv("API_TIMEOUT_SECONDS", "4")
	t.Setenv("DASHBOARD_UPDATES_STREAM", "dashboard:updates")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APITimeout() != 4*time.Second {
		t.Errorf("Expected API timeout 4s, got %v", cfg.APITimeout())
	}
	if cfg.Dashboard.UpdatesStream != "dashboard:updates" {
		t.Errorf("Expected updates stream 'dashboard:updates', got '%s'", cfg.Dashboard.UpdatesStream)
	}
}
