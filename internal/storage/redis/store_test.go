package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func TestStore_PrefixedKey(t *testing.T) {
	s := NewStore(nil)
	if got := s.prefixedKey("user"); got != "user" {
		t.Errorf("prefixedKey() = %q; want user", got)
	}

	s = NewStore(nil, WithKeyPrefix("attendflow"))
	if got := s.prefixedKey("user"); got != "attendflow:user" {
		t.Errorf("prefixedKey() = %q; want attendflow:user", got)
	}
	if got := s.unprefixed("attendflow:user"); got != "user" {
		t.Errorf("unprefixed() = %q; want user", got)
	}
}

func TestGlobEscape(t *testing.T) {
	if got := globEscape("a*b?[c]"); got != `a\*b\?\[c\]` {
		t.Errorf("globEscape() = %q", got)
	}
}

func TestOpen_InvalidURL(t *testing.T) {
	if _, err := Open("not-a-valid-url"); err == nil {
		t.Error("Open() should fail for an invalid url")
	}
}

func TestOpen_ValidURL(t *testing.T) {
	s, err := Open("redis://localhost:6379/0")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func newUnreachableStore(t *testing.T) *Store {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "localhost:0",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb)
}

func TestStore_ConnectionErrors(t *testing.T) {
	s := newUnreachableStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); err == nil {
		t.Error("Get() should fail without a server")
	}
	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Error("Set() should fail without a server")
	}
	if _, err := s.Keys(ctx, ""); err == nil {
		t.Error("Keys() should fail without a server")
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping() should fail without a server")
	}
}
