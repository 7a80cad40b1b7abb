//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ghuser/titleguard/migrations/item"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/pkg/migrator"
)

const postgresImage = "postgres:16-alpine"

// NewPostgres starts Postgres, applies the item migrations and returns the
// connection URL. The container is terminated when the test finishes.
func NewPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("titleguard"),
		tcpostgres.WithUsername("titleguard"),
		tcpostgres.WithPassword("password"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	if err := migrator.RunMigrations(ctx, url, item.FS, logger.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return url
}
