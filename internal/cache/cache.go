// Package cache is a namespaced TTL cache persisted through a storage.Storage.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/attendflow/attendflow/internal/storage"
)

const (
	// DefaultPrefix namespaces every cache key in the shared storage.
	DefaultPrefix = "attendflow_"
	// DefaultTTL applies when Set is called with a zero ttl.
	DefaultTTL = 15 * time.Minute
)

// entry is the persisted form. Timestamps and durations are milliseconds.
type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresIn int64           `json:"expiresIn"`
}

// Cache stores JSON values with a time to live. Reads of expired entries
// delete them. There is no cross-process locking: the last write wins.
type Cache struct {
	store      storage.Storage
	prefix     string
	defaultTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix overrides the key namespace.
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// WithDefaultTTL overrides the TTL used when Set is given zero.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a cache over store.
func New(store storage.Storage, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		prefix:     DefaultPrefix,
		defaultTTL: DefaultTTL,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Set stores data under key. A zero ttl uses the default TTL.
func (c *Cache) Set(ctx context.Context, key string, data any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode cache data: %w", err)
	}
	e, err := json.Marshal(entry{
		Data:      raw,
		Timestamp: c.now().UnixMilli(),
		ExpiresIn: ttl.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.store.Set(ctx, c.key(key), string(e)); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Get decodes the value under key into dst and reports whether it was a
// hit. Missing, expired and undecodable entries are misses.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	e, ok := c.load(ctx, key)
	if !ok {
		return false
	}
	if c.expired(e) {
		c.Remove(ctx, key)
		return false
	}
	if dst != nil {
		if err := json.Unmarshal(e.Data, dst); err != nil {
			c.logger.Warn("decode cache data", "key", key, "error", err)
			return false
		}
	}
	return true
}

// Has reports whether key holds a live entry.
func (c *Cache) Has(ctx context.Context, key string) bool {
	return c.Get(ctx, key, nil)
}

// Remove deletes key.
func (c *Cache) Remove(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, c.key(key)); err != nil {
		c.logger.Warn("remove cache entry", "key", key, "error", err)
	}
}

// Clear removes every key in the cache namespace and leaves other keys alone.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		return fmt.Errorf("list cache keys: %w", err)
	}
	for _, k := range keys {
		if err := c.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

func (c *Cache) load(ctx context.Context, key string) (entry, bool) {
	raw, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("read cache entry", "key", key, "error", err)
		}
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.logger.Warn("decode cache entry", "key", key, "error", err)
		return entry{}, false
	}
	return e, true
}

func (c *Cache) expired(e entry) bool {
	return c.now().UnixMilli()-e.Timestamp > e.ExpiresIn
}

// EntryStatus describes one cache entry for diagnostics.
type EntryStatus struct {
	Exists    bool          `json:"exists"`
	Age       time.Duration `json:"age"`
	Remaining time.Duration `json:"remaining"`
	Expired   bool          `json:"expired"`
	Size      int           `json:"size"`
	Error     string        `json:"error,omitempty"`
}

// Status reports every entry in the namespace, keyed without the prefix.
// Entries are not removed, even when expired.
func (c *Cache) Status(ctx context.Context) (map[string]EntryStatus, error) {
	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		return nil, fmt.Errorf("list cache keys: %w", err)
	}

	now := c.now().UnixMilli()
	out := make(map[string]EntryStatus, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, c.prefix)
		raw, err := c.store.Get(ctx, k)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			out[name] = EntryStatus{Error: "parse error"}
			continue
		}
		age := now - e.Timestamp
		out[name] = EntryStatus{
			Exists:    true,
			Age:       time.Duration(age) * time.Millisecond,
			Remaining: time.Duration(max(0, e.ExpiresIn-age)) * time.Millisecond,
			Expired:   age > e.ExpiresIn,
			Size:      len(raw),
		}
	}
	return out, nil
}
