// Package redis stores keys as plain Redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/attendflow/attendflow/internal/storage"
	"github.com/redis/go-redis/v9"
)

const scanCount = 100

// Store implements storage.Storage on a Redis server.
type Store struct {
	client    redis.Cmdable
	keyPrefix string
}

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix namespaces every key as "<prefix>:<key>".
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.keyPrefix = prefix
	}
}

// NewStore wraps an existing client.
func NewStore(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open parses a redis:// URL and connects lazily.
func Open(url string, opts ...Option) (*Store, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewStore(redis.NewClient(options), opts...), nil
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *Store) prefixedKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

func (s *Store) unprefixed(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.keyPrefix+":")
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefixedKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get key: %w", err)
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefixedKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set key: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefixedKey(key)).Err(); err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	return nil
}

// Keys walks the keyspace with SCAN so large databases are not blocked.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := globEscape(s.prefixedKey(prefix)) + "*"

	seen := make(map[string]struct{})
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("scan keys: %w", err)
		}
		for _, k := range batch {
			seen[s.unprefixed(k)] = struct{}{}
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the client when it owns a connection pool.
func (s *Store) Close() error {
	if c, ok := s.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func globEscape(s string) string {
	return globEscaper.Replace(s)
}

var _ storage.Storage = (*Store)(nil)
