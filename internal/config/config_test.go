package config

import (
	"errors"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"returns default when not set", "TEST_KEY_UNSET", "default", "", "default"},
		{"returns env value when set", "TEST_KEY_SET", "default", "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{"returns default when not set", "TEST_INT_UNSET", 100, "", 100},
		{"parses valid int", "TEST_INT_VALID", 100, "42", 42},
		{"returns default on invalid int", "TEST_INT_INVALID", 100, "not-a-number", 100},
		{"parses zero", "TEST_INT_ZERO", 100, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{"returns default when not set", "", 10 * time.Second},
		{"parses duration", "3s", 3 * time.Second},
		{"returns default on invalid duration", "soon", 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_DURATION", tt.envValue)
			}
			if got := getEnvDuration("TEST_DURATION", 10*time.Second); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/data")

	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("API.BaseURL = %q, want http://localhost:8080", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.API.MaxConcurrent != 8 {
		t.Errorf("API.MaxConcurrent = %d, want 8", cfg.API.MaxConcurrent)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Storage.Path != "/data" {
		t.Errorf("Storage = %+v, want file backend at /data", cfg.Storage)
	}
	if cfg.Cache.DefaultTTL != 15*time.Minute {
		t.Errorf("Cache.DefaultTTL = %v, want 15m", cfg.Cache.DefaultTTL)
	}
	if cfg.Language != "vi" {
		t.Errorf("Language = %q, want vi", cfg.Language)
	}
	if cfg.Mock.Port != 8080 || cfg.Mock.Bind != "127.0.0.1" || cfg.Mock.TokenTTL != 30*time.Minute {
		t.Errorf("Mock = %+v", cfg.Mock)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ATTENDFLOW_API_URL", "https://hr.example.com")
	t.Setenv("ATTENDFLOW_API_TIMEOUT", "30s")
	t.Setenv("ATTENDFLOW_STORAGE_BACKEND", "redis")
	t.Setenv("ATTENDFLOW_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ATTENDFLOW_LOG_LEVEL", "debug")
	t.Setenv("ATTENDFLOW_LANG", "en")
	t.Setenv("ATTENDFLOW_MOCK_SECRET", "s3cret")

	cfg := Default("/data")
	cfg.ApplyEnv()

	if cfg.API.BaseURL != "https://hr.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.Storage.Backend != BackendRedis || cfg.Storage.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Language)
	}
	if cfg.Mock.Secret != "s3cret" {
		t.Errorf("Mock.Secret = %q, want s3cret", cfg.Mock.Secret)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"sqlite", func(c *Config) { c.Storage.Backend = BackendSQLite }, nil},
		{"memory", func(c *Config) { c.Storage.Backend = BackendMemory }, nil},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "etcd" }, ErrUnknownBackend},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }, ErrMissingDSN},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Backend = BackendPostgres
			c.Storage.DSN = "postgres://localhost/attendflow"
		}, nil},
		{"redis without url", func(c *Config) { c.Storage.Backend = BackendRedis }, ErrMissingRedisURL},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, ErrInvalidTimeout},
		{"unknown language", func(c *Config) { c.Language = "fr" }, ErrUnknownLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/data")
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
