//go:build integration

// Package containers starts throwaway Postgres and Redis instances for
// integration tests. Build with -tags integration; Docker must be running.
package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/config"
)

const redisImage = "redis:7-alpine"

// NewRedis starts Redis and returns a connected client. The container is
// terminated when the test finishes.
func NewRedis(t *testing.T) *cache.RedisClient {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	rc, err := cache.NewRedisClient(ctx, &config.Config{RedisURL: url})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}
