// Package storage implements the historian storage driver: table
// lifecycle, the table-name registry, batched insertion, range and
// aggregate queries, and topic identity management over a relational
// backend.
package storage

import (
	"context"
	"fmt"
	"time"

	"timescribe/config"
)

// Store is the historian storage API exposed to the host process. Two
// backends implement it: SQLite (default, pure Go) and Redshift over the
// Postgres wire protocol.
type Store interface {
	// Schema lifecycle
	SetupHistorianTables(ctx context.Context) error
	SetupAggregateHistorianTables(ctx context.Context, registryTable string) error
	RecordTableDefinitions(ctx context.Context, defs TableDefinitions, registryTable string) error
	ReadTablenamesFromDB(ctx context.Context, registryTable string) (TableNames, error)
	CreateAggregateStore(ctx context.Context, aggType, aggPeriod string) error

	// Writes
	BulkInsert() *BulkWriter
	InsertAggregate(ctx context.Context, aggType, aggPeriod string, ts time.Time, topicID int64, value any, topicsList []int64) error

	// Reads
	Query(ctx context.Context, topicIDs []int64, idNameMap map[int64]string, opts QueryOptions) (map[string][]Reading, error)
	CollectAggregate(ctx context.Context, topicIDs []int64, aggType string, start, end *time.Time) (float64, int64, error)
	GetAggregationList() []string

	// Topic identity
	InsertTopic(ctx context.Context, topic string) (int64, error)
	InsertAggTopic(ctx context.Context, topic, aggType, aggPeriod string) (int64, error)
	UpdateTopic(ctx context.Context, id int64, name string) error
	UpdateAggTopic(ctx context.Context, id int64, name string) error
	GetTopicMap(ctx context.Context) (map[string]int64, map[string]string, error)
	GetAggTopicMap(ctx context.Context) (map[AggTopicKey]int64, error)
	GetAggTopics(ctx context.Context) ([]AggTopic, error)
	QueryTopicsByPattern(ctx context.Context, pattern string) (map[string]int64, error)

	// Raw statement builders for hosts composing their own writes
	InsertDataQuery() string
	InsertMetaQuery() string
	InsertTopicQuery() string
	UpdateTopicQuery() string
	InsertAggTopicQuery() string
	UpdateAggTopicQuery() string
	ReplaceAggMetaQuery() string
	InsertAggregateQuery(tableName string) (string, error)

	TableNames() TableNames
	SetTableNames(names TableNames)
	Close() error
}

// NewStore creates a Store for the configured backend.
//
// Example usage:
//
//	cfg := &config.DatabaseConfig{Driver: "redshift", Host: "cluster.example", Name: "historian"}
//	store, err := NewStore(cfg, storage.DefaultTableNames())
func NewStore(cfg *config.DatabaseConfig, tables TableNames) (Store, error) {
	if cfg == nil {
		cfg = &config.DatabaseConfig{}
	}

	switch driver := cfg.EffectiveDriver(); driver {
	case "sqlite", "sqlite3", "modernc", "modernc-sqlite":
		path := cfg.Path
		if path == "" {
			path = "timescribe.db"
		}
		s, err := NewSQLiteStore(path, tables)
		if err != nil {
			return nil, err
		}
		return s, nil

	case "redshift", "postgres", "postgresql":
		s, err := NewRedshiftStore(cfg, tables)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %q (supported: sqlite, redshift, postgres)", driver)
	}
}
