package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Validation errors
var (
	ErrUnknownBackend  = errors.New("unknown storage backend")
	ErrInvalidTimeout  = errors.New("api timeout must be positive")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrMissingDSN      = errors.New("postgres backend requires storage.dsn")
	ErrMissingRedisURL = errors.New("redis backend requires storage.redis_url")
)

// Config holds all configuration for the client and the mock backend
type Config struct {
	API      APIConfig     `yaml:"api"`
	Storage  StorageConfig `yaml:"storage"`
	Cache    CacheConfig   `yaml:"cache"`
	Log      LogConfig     `yaml:"log"`
	Language string        `yaml:"language"`
	Mock     MockConfig    `yaml:"mock"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	RatePerSecond int           `yaml:"rate_per_second"`
}

// StorageConfig selects where the session and cache are persisted
type StorageConfig struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn,omitempty"`
	RedisURL string `yaml:"redis_url,omitempty"`
}

// CacheConfig holds cache settings
type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MockConfig holds settings of the development backend
type MockConfig struct {
	Bind     string        `yaml:"bind"`
	Port     int           `yaml:"port"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	Secret   string        `yaml:"-"` // Loaded from secrets.yaml or the environment
}

// Default returns the built-in configuration. dataDir is used as the
// storage path.
func Default(dataDir string) *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8080",
			Timeout:       10 * time.Second,
			MaxConcurrent: 8,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    dataDir,
		},
		Cache: CacheConfig{
			DefaultTTL: 15 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Language: "vi",
		Mock: MockConfig{
			Bind:     "127.0.0.1",
			Port:     8080,
			TokenTTL: 30 * time.Minute,
		},
	}
}

// ApplyEnv overrides settings from ATTENDFLOW_* environment variables
func (c *Config) ApplyEnv() {
	c.API.BaseURL = getEnv("ATTENDFLOW_API_URL", c.API.BaseURL)
	c.API.Timeout = getEnvDuration("ATTENDFLOW_API_TIMEOUT", c.API.Timeout)
	c.Storage.Backend = getEnv("ATTENDFLOW_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Path = getEnv("ATTENDFLOW_STORAGE_PATH", c.Storage.Path)
	c.Storage.DSN = getEnv("ATTENDFLOW_DATABASE_URL", c.Storage.DSN)
	c.Storage.RedisURL = getEnv("ATTENDFLOW_REDIS_URL", c.Storage.RedisURL)
	c.Log.Level = getEnv("ATTENDFLOW_LOG_LEVEL", c.Log.Level)
	c.Language = getEnv("ATTENDFLOW_LANG", c.Language)
	c.Mock.Port = getEnvInt("ATTENDFLOW_MOCK_PORT", c.Mock.Port)
	c.Mock.Secret = getEnv("ATTENDFLOW_MOCK_SECRET", c.Mock.Secret)
}

// Validate checks settings that would fail later at wiring time
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return ErrMissingDSN
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}

	if c.API.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	switch c.Language {
	case "vi", "en":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, c.Language)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
