package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/attendflow/attendflow/internal/config"
)

// cmdInit writes the default configuration and a mock signing secret
func cmdInit() error {
	dir, err := config.EnsureDir()
	if err != nil {
		return fmt.Errorf("setup config directory: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("✓ Config already exists: %s\n", configPath)
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := config.SaveFile(configPath, config.Default(filepath.Join(dir, "data"))); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", configPath)
	} else {
		return fmt.Errorf("stat config: %w", err)
	}

	secretsPath := filepath.Join(dir, "secrets.yaml")
	if _, err := os.Stat(secretsPath); errors.Is(err, fs.ErrNotExist) {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate secret: %w", err)
		}
		if err := config.SaveSecrets(config.SecretsConfig{
			MockSecret: base64.RawURLEncoding.EncodeToString(secret),
		}); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", secretsPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  attendflow-mock          # start the development backend")
	fmt.Println("  attendflow login admin   # sign in")
	return nil
}

// cmdConfig shows the effective configuration
func cmdConfig() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	dir, _ := config.Dir()

	fmt.Println("AttendFlow Configuration")
	fmt.Println("========================")
	fmt.Printf("Config dir:      %s\n", dir)
	fmt.Printf("API:             %s (timeout %s, max %d in flight)\n", cfg.API.BaseURL, cfg.API.Timeout, cfg.API.MaxConcurrent)
	if cfg.API.RatePerSecond > 0 {
		fmt.Printf("Rate limit:      %d/s\n", cfg.API.RatePerSecond)
	}
	fmt.Printf("Storage:         %s", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		fmt.Println(" (dsn set)")
	case config.BackendRedis:
		fmt.Println(" (redis_url set)")
	case config.BackendMemory:
		fmt.Println()
	default:
		fmt.Printf(" at %s\n", cfg.Storage.Path)
	}
	fmt.Printf("Cache TTL:       %s\n", cfg.Cache.DefaultTTL)
	fmt.Printf("Language:        %s\n", cfg.Language)
	fmt.Printf("Log:             %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
	fmt.Printf("Mock backend:    %s:%d (token ttl %s, secret set: %v)\n", cfg.Mock.Bind, cfg.Mock.Port, cfg.Mock.TokenTTL, cfg.Mock.Secret != "")
	return nil
}
