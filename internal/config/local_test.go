package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDir(t *testing.T) {
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}

	if filepath.Base(dir) != ".attendflow" {
		t.Errorf("Dir() = %q, want ending with .attendflow", dir)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("Dir() = %q, want absolute path", dir)
	}
}

func TestEnsureDir(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	dir, err := EnsureDir()
	if err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	expectedDir := filepath.Join(tmpHome, ".attendflow")
	if dir != expectedDir {
		t.Errorf("EnsureDir() = %q, want %q", dir, expectedDir)
	}

	for _, subdir := range []string{"logs", "data"} {
		if _, err := os.Stat(filepath.Join(dir, subdir)); os.IsNotExist(err) {
			t.Errorf("EnsureDir() should create %s", subdir)
		}
	}
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Storage.Path != filepath.Join(dir, "data") {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, filepath.Join(dir, "data"))
	}
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
}

func TestLoadFile_PartialYAMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
api:
  base_url: https://hr.example.com
  timeout: 3s
storage:
  backend: sqlite
language: en
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.API.BaseURL != "https://hr.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("API.Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.API.MaxConcurrent != 8 {
		t.Errorf("API.MaxConcurrent = %d, want default 8", cfg.API.MaxConcurrent)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Cache.DefaultTTL != 15*time.Minute {
		t.Errorf("Cache.DefaultTTL = %v, want default 15m", cfg.Cache.DefaultTTL)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Language)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("storage: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() should fail on malformed yaml")
	}

	if err := os.WriteFile(path, []byte("storage:\n  backend: postgres\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrMissingDSN) {
		t.Errorf("LoadFile() error = %v, want ErrMissingDSN", err)
	}
}

func TestLoadFile_Secrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("storage:\n  backend: postgres\n"), 0644); err != nil {
		t.Fatal(err)
	}
	secrets := "mock_secret: from-file\ndatabase_url: postgres://localhost/attendflow\n"
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), []byte(secrets), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Mock.Secret != "from-file" {
		t.Errorf("Mock.Secret = %q, want from-file", cfg.Mock.Secret)
	}
	if cfg.Storage.DSN != "postgres://localhost/attendflow" {
		t.Errorf("Storage.DSN = %q", cfg.Storage.DSN)
	}
}

func TestLoadFile_EnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("language: en\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATTENDFLOW_LANG", "vi")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Language != "vi" {
		t.Errorf("Language = %q, want vi from env", cfg.Language)
	}
}

func TestSave(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	cfg := Default(filepath.Join(tmpHome, ".attendflow", "data"))
	cfg.API.BaseURL = "https://hr.example.com"
	cfg.Mock.Secret = "never-written"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpHome, ".attendflow", "config.yaml"))
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved config is not yaml: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.API.BaseURL != "https://hr.example.com" {
		t.Errorf("API.BaseURL = %q after round trip", loaded.API.BaseURL)
	}
	if loaded.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v after round trip, want 10s", loaded.API.Timeout)
	}
	if loaded.Mock.Secret != "" {
		t.Errorf("Mock.Secret = %q, secrets must not be written to config.yaml", loaded.Mock.Secret)
	}
}

func TestSaveSecrets(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	if err := SaveSecrets(SecretsConfig{MockSecret: "abc"}); err != nil {
		t.Fatalf("SaveSecrets() error = %v", err)
	}

	path := filepath.Join(tmpHome, ".attendflow", "secrets.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat secrets: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("secrets.yaml perm = %o, want 600", perm)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mock.Secret != "abc" {
		t.Errorf("Mock.Secret = %q, want abc", cfg.Mock.Secret)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv() without .env error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ATTENDFLOW_TEST_DOTENV=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATTENDFLOW_TEST_DOTENV", "")
	os.Unsetenv("ATTENDFLOW_TEST_DOTENV")

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("ATTENDFLOW_TEST_DOTENV"); got != "loaded" {
		t.Errorf("ATTENDFLOW_TEST_DOTENV = %q, want loaded", got)
	}
}
