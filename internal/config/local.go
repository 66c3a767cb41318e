package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SecretsConfig holds values loaded from secrets.yaml
type SecretsConfig struct {
	MockSecret  string `yaml:"mock_secret,omitempty"`
	DatabaseURL string `yaml:"database_url,omitempty"`
	RedisURL    string `yaml:"redis_url,omitempty"`
}

// Dir returns the path to ~/.attendflow
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".attendflow"), nil
}

// EnsureDir creates ~/.attendflow and subdirectories if they don't exist
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	for _, subdir := range []string{"", "logs", "data"} {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// LoadDotEnv loads .env from the working directory. Variables already set
// in the environment win. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads ~/.attendflow/config.yaml, applies environment overrides and
// validates the result.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

// LoadFile reads the config at path. A missing file yields the defaults.
// secrets.yaml next to the file is applied when present.
func LoadFile(path string) (*Config, error) {
	dir := filepath.Dir(path)
	cfg := Default(filepath.Join(dir, "data"))

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// loadSecrets fills settings that are kept out of config.yaml
func loadSecrets(dir string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Join(dir, "secrets.yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	if secrets.MockSecret != "" {
		cfg.Mock.Secret = secrets.MockSecret
	}
	if secrets.DatabaseURL != "" && cfg.Storage.DSN == "" {
		cfg.Storage.DSN = secrets.DatabaseURL
	}
	if secrets.RedisURL != "" && cfg.Storage.RedisURL == "" {
		cfg.Storage.RedisURL = secrets.RedisURL
	}
	return nil
}

// Save writes cfg to ~/.attendflow/config.yaml
func Save(cfg *Config) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}
	return SaveFile(filepath.Join(dir, "config.yaml"), cfg)
}

// SaveFile writes cfg to path
func SaveFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// SaveSecrets writes secrets next to config.yaml with owner-only permissions
func SaveSecrets(secrets SecretsConfig) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}

	return nil
}
