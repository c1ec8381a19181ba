//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"time"

	"github.com/stretchr/testify/require"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/netdoc/netdoc/pkg/catalog"
	catalogpg "github.com/netdoc/netdoc/pkg/catalog/store/postgres"
	"github.com/netdoc/netdoc/pkg/catalog/storetest"
)

// TestPostgresStoreConformance runs the shared conformance suite against a
// real PostgreSQL instance, grounded on the teacher's
// pkg/store/metadata/postgres/main_test.go TestMain pattern, but scoped to
// one container per test via testcontainers-go/modules/postgres rather than
// a shared TestMain container, since this suite is opt-in (`-tags
// integration`) and not run on every `go test ./...`.
func TestPostgresStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) catalog.Store {
		ctx := context.Background()

		container, err := postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("netdoc_test"),
			postgres.WithUsername("netdoc_test"),
			postgres.WithPassword("netdoc_test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = container.Terminate(ctx) })

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		store, err := catalogpg.Open(ctx, dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		return store
	})
}
