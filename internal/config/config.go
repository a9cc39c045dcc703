package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Location LocationConfig
	Map      MapConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Secure      bool   // Use HTTPS-only cookies
	Environment string // "development", "production", "test"
	Debug       bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LocationConfig controls one-shot position capture.
type LocationConfig struct {
	CaptureTimeout time.Duration
	MaximumAge     time.Duration // reuse window for a recent fix
	TrackingTTL    time.Duration
	RateLimit      int64 // captures per user per minute
}

type MapConfig struct {
	QueryTimeout time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration from the environment. Values from the file named by
// ENV_FILE (default ".env") are applied first when that file exists; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvInt("SERVER_PORT", 8080),
			Secure:      getEnvBool("SERVER_SECURE", false),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvBool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "journey"),
			Password: getEnv("DB_PASSWORD", "journey"),
			DBName:   getEnv("DB_NAME", "journey"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Location: LocationConfig{
			CaptureTimeout: getEnvDuration("LOCATION_CAPTURE_TIMEOUT", 10*time.Second),
			MaximumAge:     getEnvDuration("LOCATION_MAXIMUM_AGE", 2*time.Minute),
			TrackingTTL:    getEnvDuration("LOCATION_TRACKING_TTL", 12*time.Hour),
			RateLimit:      int64(getEnvInt("LOCATION_RATE_LIMIT", 30)),
		},
		Map: MapConfig{
			QueryTimeout: getEnvDuration("MAP_QUERY_TIMEOUT", 5*time.Second),
		},
	}

	if cfg.Location.CaptureTimeout <= 0 {
		return nil, fmt.Errorf("LOCATION_CAPTURE_TIMEOUT must be positive, got %s", cfg.Location.CaptureTimeout)
	}
	if cfg.Location.MaximumAge < 0 {
		return nil, fmt.Errorf("LOCATION_MAXIMUM_AGE must not be negative, got %s", cfg.Location.MaximumAge)
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
