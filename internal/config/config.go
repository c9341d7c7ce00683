package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// StoreDriver names a record store backend.
type StoreDriver string

const (
	DriverMongo  StoreDriver = "mongo"
	DriverSQLite StoreDriver = "sqlite"
	DriverMySQL  StoreDriver = "mysql"
	DriverMemory StoreDriver = "memory"
)

// StoreConfig selects and locates the record store.
type StoreConfig struct {
	Driver StoreDriver `validate:"oneof=mongo sqlite mysql memory"`

	MongoURI        string `validate:"required_if=Driver mongo"`
	MongoDatabase   string `validate:"required_if=Driver mongo"`
	MongoCollection string `validate:"required_if=Driver mongo"`

	// SQLDSN is a file path for sqlite (default apod.db) or a go-sql-driver
	// DSN for mysql, which has no default.
	SQLDSN string `validate:"required_if=Driver mysql"`
}

type AppConfig struct {
	Port string `validate:"required,numeric"`

	NASAAPIKey  string `validate:"required"`
	NASABaseURL string `validate:"required,url"`

	// HTTPTimeout bounds each outbound call; 0 disables the timeout.
	HTTPTimeout        time.Duration `validate:"gte=0"`
	UpstreamMaxRetries int           `validate:"gte=0,lte=10"`

	Store StoreConfig

	// Daily refresh, fired at RefreshAt (HH:MM, UTC).
	RefreshEnabled bool
	RefreshAt      string `validate:"required,datetime=15:04"`

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		zap.S().Debugw("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.NASAAPIKey = getenvDefault("NASA_API_KEY", "DEMO_KEY")
	cfg.NASABaseURL = getenvDefault("NASA_BASE_URL", "https://api.nasa.gov")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	retries, err := getenvInt("UPSTREAM_MAX_RETRIES", 2)
	if err != nil {
		return nil, err
	}
	cfg.UpstreamMaxRetries = retries

	cfg.Store = StoreConfig{
		Driver:          StoreDriver(strings.ToLower(getenvDefault("STORE_DRIVER", string(DriverMongo)))),
		MongoURI:        getenvDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getenvDefault("MONGO_DATABASE", "apod"),
		MongoCollection: getenvDefault("MONGO_COLLECTION", "apod"),
		SQLDSN:          os.Getenv("SQL_DSN"),
	}
	if cfg.Store.Driver == DriverSQLite && cfg.Store.SQLDSN == "" {
		cfg.Store.SQLDSN = "apod.db"
	}

	enabled, err := getenvBool("REFRESH_ENABLED", true)
	if err != nil {
		return nil, err
	}
	cfg.RefreshEnabled = enabled
	cfg.RefreshAt = getenvDefault("REFRESH_AT", "10:00")

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.LogFile = os.Getenv("LOG_FILE")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
