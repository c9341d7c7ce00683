package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "NASA_API_KEY", "NASA_BASE_URL", "HTTP_TIMEOUT", "UPSTREAM_MAX_RETRIES",
		"STORE_DRIVER", "MONGO_URI", "MONGO_DATABASE", "MONGO_COLLECTION", "SQL_DSN",
		"REFRESH_ENABLED", "REFRESH_AT", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.NASAAPIKey != "DEMO_KEY" || cfg.NASABaseURL != "https://api.nasa.gov" {
		t.Errorf("nasa config = %q %q", cfg.NASAAPIKey, cfg.NASABaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.Store.Driver != DriverMongo || cfg.Store.MongoDatabase != "apod" || cfg.Store.MongoCollection != "apod" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !cfg.RefreshEnabled || cfg.RefreshAt != "10:00" {
		t.Errorf("refresh = %v %q", cfg.RefreshEnabled, cfg.RefreshAt)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQL_DSN", "/tmp/apod.db")
	t.Setenv("REFRESH_ENABLED", "false")
	t.Setenv("REFRESH_AT", "06:30")
	t.Setenv("HTTP_TIMEOUT", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.SQLDSN != "/tmp/apod.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.RefreshEnabled || cfg.RefreshAt != "06:30" {
		t.Errorf("refresh = %v %q", cfg.RefreshEnabled, cfg.RefreshAt)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
}

func TestLoadSQLDSNDefaultsPerDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.SQLDSN != "apod.db" {
		t.Errorf("sqlite SQLDSN = %q", cfg.Store.SQLDSN)
	}

	t.Setenv("STORE_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for mysql without SQL_DSN")
	}

	t.Setenv("SQL_DSN", "apod:secret@tcp(localhost:3306)/apod")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.SQLDSN != "apod:secret@tcp(localhost:3306)/apod" {
		t.Errorf("mysql SQLDSN = %q", cfg.Store.SQLDSN)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORE_DRIVER", "postgres"},
		{"REFRESH_AT", "25:00"},
		{"HTTP_TIMEOUT", "soon"},
		{"UPSTREAM_MAX_RETRIES", "many"},
		{"REFRESH_ENABLED", "maybe"},
		{"LOG_LEVEL", "chatty"},
		{"PORT", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
