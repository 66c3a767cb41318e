// Package app wires the client services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/attendflow/attendflow/internal/attendance"
	"github.com/attendflow/attendflow/internal/auth"
	"github.com/attendflow/attendflow/internal/cache"
	"github.com/attendflow/attendflow/internal/config"
	"github.com/attendflow/attendflow/internal/employee"
	"github.com/attendflow/attendflow/internal/i18n"
	"github.com/attendflow/attendflow/internal/session"
	"github.com/attendflow/attendflow/internal/storage"
	"github.com/attendflow/attendflow/internal/storage/local"
	"github.com/attendflow/attendflow/internal/storage/postgres"
	"github.com/attendflow/attendflow/internal/storage/redis"
	"github.com/attendflow/attendflow/internal/storage/sqlite"
	"github.com/attendflow/attendflow/internal/transport"
)

// SQLiteFileName is the database file of the sqlite backend, inside storage.path.
const SQLiteFileName = "attendflow.db"

// RedisKeyPrefix namespaces keys of the redis backend.
const RedisKeyPrefix = "attendflow"

// App holds all client dependencies
type App struct {
	Config     *config.Config
	Storage    storage.Storage
	Cache      *cache.Cache
	Sessions   *session.Store
	Client     *transport.Client
	Auth       *auth.Service
	Employees  *employee.Service
	Attendance *attendance.Service
	Session    *session.Manager
	Translator *i18n.Translator
}

// Option configures NewApp.
type Option func(*options)

type options struct {
	storage storage.Storage
	logger  *slog.Logger
}

// WithStorage uses s instead of the configured backend.
func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithLogger sets the logger handed to every service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewApp creates the client with all dependencies wired. The persisted
// session is restored before returning.
func NewApp(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	tr, err := i18n.New(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("init translator: %w", err)
	}

	store := o.storage
	if store == nil {
		store, err = OpenStorage(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	a := &App{
		Config:     cfg,
		Storage:    store,
		Translator: tr,
	}

	a.Cache = cache.New(store, cache.WithDefaultTTL(cfg.Cache.DefaultTTL), cache.WithLogger(o.logger))
	a.Sessions = session.NewStore(store)

	a.Client = transport.New(transport.Config{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		MaxConcurrent: cfg.API.MaxConcurrent,
		RatePerSecond: cfg.API.RatePerSecond,
		Logger:        o.logger,
	}, a.Sessions)

	a.Auth = auth.NewService(a.Client, a.Sessions, auth.WithLogger(o.logger))
	a.Employees = employee.NewService(a.Client, a.Cache, employee.WithLogger(o.logger))
	a.Attendance = attendance.NewService(a.Client, o.logger)
	a.Session = session.NewManager(a.Auth, a.Sessions, session.WithLogger(o.logger))

	if err := a.Session.Init(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	return a, nil
}

// OpenStorage opens the configured key/value backend.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemory(), nil

	case config.BackendFile, "":
		s, err := local.NewStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return s, nil

	case config.BackendSQLite:
		s, err := sqlite.OpenStore(filepath.Join(cfg.Path, SQLiteFileName))
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return s, nil

	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return s, nil

	case config.BackendRedis:
		s, err := redis.Open(cfg.RedisURL, redis.WithKeyPrefix(RedisKeyPrefix))
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
}

// Close stops the refresh timer and releases the transport and storage.
func (a *App) Close() error {
	if a.Session != nil {
		a.Session.Close()
	}
	var errs []error
	if a.Client != nil {
		errs = append(errs, a.Client.Close())
	}
	if a.Storage != nil {
		errs = append(errs, a.Storage.Close())
	}
	return errors.Join(errs...)
}
