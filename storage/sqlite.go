package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)
)

// SQLiteStore implements Store over SQLite. It is the default backend for
// single-node installs and carries the whole unit test suite.
type SQLiteStore struct {
	BaseStore
	dbPath string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite-backed store. Schema creation
// is left to SetupHistorianTables, which the host runs at startup.
func NewSQLiteStore(dbPath string, tables TableNames) (*SQLiteStore, error) {
	// Ensure directory exists (unless in-memory)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	connStr := dbPath
	if dbPath != ":memory:" {
		connStr += "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One exclusively-owned connection, matching the driver's concurrency
	// model. Also keeps :memory: databases from splitting across pool
	// connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logDebug("Opened SQLite database", "path", dbPath)

	return &SQLiteStore{
		BaseStore: *NewBaseStore(db, &SQLiteDialect{}, tables),
		dbPath:    dbPath,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}
