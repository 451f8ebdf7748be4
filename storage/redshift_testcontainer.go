//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"timescribe/config"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RedshiftTestContainer holds a running Postgres container standing in for
// a Redshift cluster. Redshift speaks the Postgres wire protocol, so a
// plain Postgres image exercises the connection and statement paths; the
// Redshift-only DDL keywords (IDENTITY, SORTKEY) are not valid Postgres and
// the integration tests create their schema through Postgres-compatible
// statements instead.
type RedshiftTestContainer struct {
	Container testcontainers.Container
	DSN       string
}

// NewRedshiftTestContainer starts the container and returns it with a
// cleanup function to call when the test is complete.
func NewRedshiftTestContainer(t *testing.T) (*RedshiftTestContainer, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("timescribe_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgContainer.Terminate(ctx)
		t.Fatalf("failed to get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}

	return &RedshiftTestContainer{
		Container: pgContainer,
		DSN:       connStr,
	}, cleanup
}

// NewRedshiftStoreFromContainer connects a RedshiftStore to the container.
func NewRedshiftStoreFromContainer(t *testing.T, container *RedshiftTestContainer) *RedshiftStore {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "redshift",
		DSN:    container.DSN,
	}

	store, err := NewRedshiftStore(cfg, DefaultTableNames())
	if err != nil {
		t.Fatalf("failed to create RedshiftStore: %v", err)
	}

	return store
}

// SkipIfNoDocker skips the test if Docker is not available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Docker not available (panic recovered): %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		t.Skipf("Docker not available, skipping integration test: %v", err)
		return
	}
	defer provider.Close()

	_, err = provider.Client().Ping(ctx)
	if err != nil {
		t.Skipf("Docker not responding, skipping integration test: %v", err)
	}
}

// WithRedshiftStore starts a container, connects a store, runs the test
// function, and cleans up.
func WithRedshiftStore(t *testing.T, testFn func(t *testing.T, store *RedshiftStore)) {
	t.Helper()

	SkipIfNoDocker(t)

	container, cleanup := NewRedshiftTestContainer(t)
	defer cleanup()

	store := NewRedshiftStoreFromContainer(t, container)
	defer store.Close()

	testFn(t, store)
}
