package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// BaseStore provides the historian operations shared by the SQLite and
// Redshift backends. It holds a single *sql.DB connection, the active
// Dialect, and the physical table names.
//
// Queries are written using SQLite style (?) placeholders and converted at
// runtime when the dialect numbers its parameters.
//
// The driver introduces no concurrency of its own: the enclosing historian
// is assumed to serialize calls, with at most one writer per table set.
// Duplicate-avoidance relies on that assumption plus DISTINCT reads and
// id-ordered scans when building maps.
type BaseStore struct {
	db      *sql.DB
	dialect Dialect
	tables  TableNames
}

// NewBaseStore creates a BaseStore over an open connection.
func NewBaseStore(db *sql.DB, dialect Dialect, tables TableNames) *BaseStore {
	return &BaseStore{db: db, dialect: dialect, tables: tables}
}

// DB returns the underlying database connection.
func (s *BaseStore) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect being used.
func (s *BaseStore) Dialect() Dialect {
	return s.dialect
}

// TableNames returns the physical table names currently in effect.
func (s *BaseStore) TableNames() TableNames {
	return s.tables
}

// SetTableNames switches the store to a resolved set of physical table
// names, typically the result of ReadTablenamesFromDB.
func (s *BaseStore) SetTableNames(names TableNames) {
	s.tables = names
}

// Close closes the database connection.
func (s *BaseStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// query converts ?-placeholders to the dialect's format.
func (s *BaseStore) query(q string) string {
	if s.dialect.Name() == "redshift" {
		return ConvertPlaceholders(q)
	}
	return q
}

// execContext wraps ExecContext with placeholder conversion.
func (s *BaseStore) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.query(query), args...)
}

// queryContext wraps QueryContext with placeholder conversion.
func (s *BaseStore) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.query(query), args...)
}

// queryRowContext wraps QueryRowContext with placeholder conversion.
func (s *BaseStore) queryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.query(query), args...)
}

// SetupHistorianTables creates the data, topics and metadata tables if they
// do not exist. Safe to call on every startup; statements run autocommitted
// so later statements see the schema immediately.
func (s *BaseStore) SetupHistorianTables(ctx context.Context) error {
	for _, name := range []string{s.tables.Data, s.tables.Topics, s.tables.Meta} {
		if err := validIdent(name); err != nil {
			return err
		}
	}

	data := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			ts %s,
			topic_id INTEGER NOT NULL,
			value_string TEXT NOT NULL,
			UNIQUE (topic_id, ts)
		)`, quoteIdent(s.tables.Data), s.dialect.SortKeyTimestamp())
	if _, err := s.execContext(ctx, data); err != nil {
		return fmt.Errorf("creating data table %s: %w", s.tables.Data, err)
	}

	topics := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			topic_id %s,
			topic_name VARCHAR(512) NOT NULL,
			UNIQUE (topic_name)
		)`, quoteIdent(s.tables.Topics), s.dialect.IdentityColumn())
	if _, err := s.execContext(ctx, topics); err != nil {
		return fmt.Errorf("creating topics table %s: %w", s.tables.Topics, err)
	}

	meta := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			topic_id INTEGER PRIMARY KEY NOT NULL,
			metadata TEXT NOT NULL
		)`, quoteIdent(s.tables.Meta))
	if _, err := s.execContext(ctx, meta); err != nil {
		return fmt.Errorf("creating meta table %s: %w", s.tables.Meta, err)
	}

	logInfo("Historian tables ready",
		"data", s.tables.Data, "topics", s.tables.Topics, "meta", s.tables.Meta)
	return nil
}

// SetupAggregateHistorianTables resolves the physical table names through
// the registry, then creates the aggregate topics and aggregate metadata
// tables if they do not exist.
func (s *BaseStore) SetupAggregateHistorianTables(ctx context.Context, registryTable string) error {
	names, err := s.ReadTablenamesFromDB(ctx, registryTable)
	if err != nil {
		return err
	}
	s.tables = names

	for _, name := range []string{s.tables.AggTopics, s.tables.AggMeta} {
		if err := validIdent(name); err != nil {
			return err
		}
	}

	aggTopics := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			agg_topic_id %s,
			agg_topic_name VARCHAR(512) NOT NULL,
			agg_type VARCHAR(512) NOT NULL,
			agg_time_period VARCHAR(512) NOT NULL,
			UNIQUE (agg_topic_name, agg_type, agg_time_period)
		)`, quoteIdent(s.tables.AggTopics), s.dialect.IdentityColumn())
	if _, err := s.execContext(ctx, aggTopics); err != nil {
		return fmt.Errorf("creating aggregate topics table %s: %w", s.tables.AggTopics, err)
	}

	aggMeta := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			agg_topic_id INTEGER PRIMARY KEY NOT NULL,
			metadata TEXT NOT NULL
		)`, quoteIdent(s.tables.AggMeta))
	if _, err := s.execContext(ctx, aggMeta); err != nil {
		return fmt.Errorf("creating aggregate meta table %s: %w", s.tables.AggMeta, err)
	}

	logInfo("Aggregate historian tables ready",
		"aggTopics", s.tables.AggTopics, "aggMeta", s.tables.AggMeta)
	return nil
}
