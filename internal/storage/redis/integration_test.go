//go:build integration

package redis_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/attendflow/attendflow/internal/storage"
	"github.com/attendflow/attendflow/internal/storage/redis"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns its URL.
func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestIntegration_Store_PrefixedKeys(t *testing.T) {
	ctx := context.Background()
	url := setupRedis(t)

	store, err := redis.Open(url, redis.WithKeyPrefix("attendflow"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	for i := 0; i < 150; i++ {
		if err := store.Set(ctx, fmt.Sprintf("attendflow_k%03d", i), "v"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	store.Set(ctx, "accessToken", "t")

	keys, err := store.Keys(ctx, "attendflow_")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 150 {
		t.Errorf("Keys() returned %d keys; want 150", len(keys))
	}
	if keys[0] != "attendflow_k000" {
		t.Errorf("Keys()[0] = %q; want unprefixed attendflow_k000", keys[0])
	}

	other, _ := redis.Open(url)
	defer other.Close()
	if got, _ := other.Keys(ctx, "accessToken"); !reflect.DeepEqual(got, []string{}) {
		t.Errorf("unprefixed store sees %v; want none", got)
	}

	if err := store.Delete(ctx, "accessToken"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "accessToken"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() error = %v; want ErrNotFound", err)
	}
}
