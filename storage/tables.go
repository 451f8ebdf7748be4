package storage

import (
	"context"
	"fmt"
)

// RecordTableDefinitions persists the logical-to-physical table name
// mapping in the registry table, creating the registry if needed. Each key
// is written with an update-then-insert: the backend has no native upsert,
// and under the single-writer assumption the two-step write cannot race
// itself into duplicate rows.
func (s *BaseStore) RecordTableDefinitions(ctx context.Context, defs TableDefinitions, registryTable string) error {
	if err := validIdent(registryTable); err != nil {
		return err
	}

	create := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			table_id VARCHAR(512) PRIMARY KEY NOT NULL,
			table_name VARCHAR(512) NOT NULL
		)`, quoteIdent(registryTable))
	if _, err := s.execContext(ctx, create); err != nil {
		return fmt.Errorf("creating registry table %s: %w", registryTable, err)
	}

	update := s.query(fmt.Sprintf(
		"UPDATE %s SET table_name = ? WHERE table_id = ?", quoteIdent(registryTable)))
	insert := s.query(fmt.Sprintf(
		"INSERT INTO %s VALUES (?, ?)", quoteIdent(registryTable)))

	entries := []struct{ key, name string }{
		{keyDataTable, defs.Data},
		{keyTopicsTable, defs.Topics},
		{keyMetaTable, defs.Meta},
		{keyPrefix, defs.Prefix},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning registry transaction: %w", err)
	}
	for _, e := range entries {
		res, err := tx.ExecContext(ctx, update, e.name, e.key)
		if err != nil {
			rollbackQuietly(tx)
			return fmt.Errorf("updating registry key %q: %w", e.key, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			rollbackQuietly(tx)
			return fmt.Errorf("reading registry rowcount: %w", err)
		}
		if affected == 0 {
			if _, err := tx.ExecContext(ctx, insert, e.key, e.name); err != nil {
				rollbackQuietly(tx)
				return fmt.Errorf("inserting registry key %q: %w", e.key, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing registry transaction: %w", err)
	}

	logDebug("Recorded table definitions", "registry", registryTable, "prefix", defs.Prefix)
	return nil
}

// ReadTablenamesFromDB recovers the physical table names from the registry,
// derives the aggregate table names from the topics and meta names, and
// applies the shared prefix to every physical name. A missing registry
// table is a caller-visible error: it means the historian was never
// initialized.
func (s *BaseStore) ReadTablenamesFromDB(ctx context.Context, registryTable string) (TableNames, error) {
	if err := validIdent(registryTable); err != nil {
		return TableNames{}, err
	}

	rows, err := s.queryContext(ctx, fmt.Sprintf(
		"SELECT table_id, table_name FROM %s", quoteIdent(registryTable)))
	if err != nil {
		return TableNames{}, fmt.Errorf("reading registry table %s: %w", registryTable, err)
	}
	defer rows.Close()

	entries := map[string]string{}
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return TableNames{}, fmt.Errorf("scanning registry row: %w", err)
		}
		entries[key] = name
	}
	if err := rows.Err(); err != nil {
		return TableNames{}, fmt.Errorf("reading registry rows: %w", err)
	}

	names := TableNames{
		Data:   entries[keyDataTable],
		Topics: entries[keyTopicsTable],
		Meta:   entries[keyMetaTable],
	}
	if names.Data == "" || names.Topics == "" || names.Meta == "" {
		return TableNames{}, fmt.Errorf("registry table %s is missing role entries", registryTable)
	}
	names.AggTopics = "aggregate_" + names.Topics
	names.AggMeta = "aggregate_" + names.Meta

	if prefix := entries[keyPrefix]; prefix != "" {
		names.Data = prefix + "_" + names.Data
		names.Topics = prefix + "_" + names.Topics
		names.Meta = prefix + "_" + names.Meta
		names.AggTopics = prefix + "_" + names.AggTopics
		names.AggMeta = prefix + "_" + names.AggMeta
	}
	return names, nil
}
