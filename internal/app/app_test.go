package app

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/attendflow/attendflow/internal/config"
	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/session"
	"github.com/attendflow/attendflow/internal/storage"
	"github.com/attendflow/attendflow/internal/storage/local"
	"github.com/attendflow/attendflow/internal/storage/sqlite"
)

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		check   func(storage.Storage) bool
		wantErr error
	}{
		{"memory", config.StorageConfig{Backend: config.BackendMemory}, func(s storage.Storage) bool {
			_, ok := s.(*storage.Memory)
			return ok
		}, nil},
		{"file", config.StorageConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "file")}, func(s storage.Storage) bool {
			_, ok := s.(*local.Store)
			return ok
		}, nil},
		{"sqlite", config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "sqlite")}, func(s storage.Storage) bool {
			_, ok := s.(*sqlite.Store)
			return ok
		}, nil},
		{"unknown", config.StorageConfig{Backend: "etcd"}, nil, config.ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := OpenStorage(ctx, tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("OpenStorage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenStorage() error = %v", err)
			}
			defer s.Close()

			if !tt.check(s) {
				t.Errorf("OpenStorage() = %T", s)
			}
			if err := s.Set(ctx, "k", "v"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if got, err := s.Get(ctx, "k"); err != nil || got != "v" {
				t.Errorf("Get() = %q, %v; want v", got, err)
			}
		})
	}
}

func TestNewApp_NoSession(t *testing.T) {
	cfg := config.Default(t.TempDir())

	a, err := NewApp(context.Background(), cfg, WithStorage(storage.NewMemory()))
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer a.Close()

	if a.Session.State() != session.Unauthenticated {
		t.Errorf("State() = %v, want unauthenticated", a.Session.State())
	}
	if a.Translator.Language() != "vi" {
		t.Errorf("Translator.Language() = %q, want vi", a.Translator.Language())
	}
	if a.Client.BaseURL() != "http://localhost:8080" {
		t.Errorf("Client.BaseURL() = %q", a.Client.BaseURL())
	}
}

func TestNewApp_RestoresSession(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "lan",
		"exp": time.Now().Add(2 * time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	user, _ := json.Marshal(domain.User{ID: "7", Username: "lan", Role: domain.DefaultRole})
	mem.Set(ctx, "accessToken", token)
	mem.Set(ctx, "user", string(user))

	cfg := config.Default(t.TempDir())
	a, err := NewApp(ctx, cfg, WithStorage(mem))
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer a.Close()

	if !a.Session.IsAuthenticated() {
		t.Fatalf("State() = %v, want authenticated", a.Session.State())
	}
	if u := a.Session.User(); u == nil || u.Username != "lan" {
		t.Errorf("User() = %+v", u)
	}
}

func TestNewApp_InvalidLanguage(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Language = "fr"

	if _, err := NewApp(context.Background(), cfg, WithStorage(storage.NewMemory())); err == nil {
		t.Error("NewApp() should fail for an unsupported language")
	}
}
