package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"timescribe/config"

	// Import the Postgres wire driver used to reach Redshift
	_ "github.com/jackc/pgx/v5/stdlib"
)

// RedshiftStore implements Store over Redshift via the Postgres wire
// protocol.
type RedshiftStore struct {
	BaseStore
}

var _ Store = (*RedshiftStore)(nil)

// NewRedshiftStore opens a connection to the cluster. The session time
// zone is pinned to UTC and the pool is held to a single connection: this
// driver instance exclusively owns its connection, and callers that need
// concurrency provision one instance per writer.
func NewRedshiftStore(cfg *config.DatabaseConfig, tables TableNames) (*RedshiftStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config required")
	}

	dsn := cfg.BuildDSN()
	if dsn == "" {
		return nil, fmt.Errorf("invalid database configuration: could not build DSN")
	}
	dsn = pinUTC(dsn)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cluster: %w", err)
	}

	logInfo("Opened historian backend", "host", cfg.Host, "database", cfg.Name)

	return &RedshiftStore{
		BaseStore: *NewBaseStore(db, &RedshiftDialect{}, tables),
	}, nil
}

// pinUTC adds a timezone=UTC runtime parameter unless the DSN already
// carries one. Stored timestamps are UTC; the session must agree.
func pinUTC(dsn string) string {
	if strings.Contains(dsn, "timezone=") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "timezone=UTC"
	}
	return dsn + " timezone=UTC"
}
