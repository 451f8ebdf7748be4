package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// InsertTopic creates a topic row and returns its backend-assigned id.
// Where the dialect supports RETURNING the id comes back with the insert;
// otherwise it is recovered by re-selecting the maximum id for the name,
// which is safe only under the single-writer assumption.
func (s *BaseStore) InsertTopic(ctx context.Context, topic string) (int64, error) {
	var id int64
	if returning := s.dialect.ReturningClause("topic_id"); returning != "" {
		stmt := fmt.Sprintf("INSERT INTO %s (topic_name) VALUES (?) %s",
			quoteIdent(s.tables.Topics), returning)
		if err := s.queryRowContext(ctx, stmt, topic).Scan(&id); err != nil {
			return 0, fmt.Errorf("inserting topic %q: %w", topic, err)
		}
		return id, nil
	}

	if _, err := s.execContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (topic_name) VALUES (?)", quoteIdent(s.tables.Topics)), topic); err != nil {
		return 0, fmt.Errorf("inserting topic %q: %w", topic, err)
	}
	if err := s.queryRowContext(ctx, fmt.Sprintf(
		"SELECT MAX(topic_id) FROM %s WHERE topic_name = ?",
		quoteIdent(s.tables.Topics)), topic).Scan(&id); err != nil {
		return 0, fmt.Errorf("recovering id for topic %q: %w", topic, err)
	}
	return id, nil
}

// InsertAggTopic creates an aggregate topic row, keyed by the
// (name, type, period) triple, and returns its id. Same id-recovery
// strategy as InsertTopic.
func (s *BaseStore) InsertAggTopic(ctx context.Context, topic, aggType, aggPeriod string) (int64, error) {
	var id int64
	if returning := s.dialect.ReturningClause("agg_topic_id"); returning != "" {
		stmt := fmt.Sprintf(
			"INSERT INTO %s (agg_topic_name, agg_type, agg_time_period) VALUES (?, ?, ?) %s",
			quoteIdent(s.tables.AggTopics), returning)
		if err := s.queryRowContext(ctx, stmt, topic, aggType, aggPeriod).Scan(&id); err != nil {
			return 0, fmt.Errorf("inserting aggregate topic %q: %w", topic, err)
		}
		return id, nil
	}

	if _, err := s.execContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (agg_topic_name, agg_type, agg_time_period) VALUES (?, ?, ?)",
		quoteIdent(s.tables.AggTopics)), topic, aggType, aggPeriod); err != nil {
		return 0, fmt.Errorf("inserting aggregate topic %q: %w", topic, err)
	}
	if err := s.queryRowContext(ctx, fmt.Sprintf(
		"SELECT MAX(agg_topic_id) FROM %s WHERE agg_topic_name = ? AND agg_type = ? AND agg_time_period = ?",
		quoteIdent(s.tables.AggTopics)), topic, aggType, aggPeriod).Scan(&id); err != nil {
		return 0, fmt.Errorf("recovering id for aggregate topic %q: %w", topic, err)
	}
	return id, nil
}

// UpdateTopic renames a topic in place; the id is stable across renames.
func (s *BaseStore) UpdateTopic(ctx context.Context, id int64, name string) error {
	if _, err := s.execContext(ctx, s.UpdateTopicQuery(), name, id); err != nil {
		return fmt.Errorf("renaming topic %d: %w", id, err)
	}
	return nil
}

// UpdateAggTopic renames an aggregate topic in place.
func (s *BaseStore) UpdateAggTopic(ctx context.Context, id int64, name string) error {
	if _, err := s.execContext(ctx, s.UpdateAggTopicQuery(), name, id); err != nil {
		return fmt.Errorf("renaming aggregate topic %d: %w", id, err)
	}
	return nil
}

// GetTopicMap returns two maps keyed by lower-cased topic name: id lookup
// and canonical-name lookup. The scan is ordered by id so a later rename
// that collides case-insensitively resolves deterministically.
func (s *BaseStore) GetTopicMap(ctx context.Context) (map[string]int64, map[string]string, error) {
	rows, err := s.queryContext(ctx, fmt.Sprintf(
		"SELECT topic_id, topic_name FROM %s ORDER BY topic_id", quoteIdent(s.tables.Topics)))
	if err != nil {
		return nil, nil, fmt.Errorf("reading topic map: %w", err)
	}
	defer rows.Close()

	idMap := make(map[string]int64)
	nameMap := make(map[string]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, fmt.Errorf("scanning topic row: %w", err)
		}
		key := strings.ToLower(name)
		idMap[key] = id
		nameMap[key] = name
	}
	return idMap, nameMap, rows.Err()
}

// GetAggTopicMap returns the (name, type, period) triple to id mapping for
// aggregate topics. Aggregate support is optional per deployment: a missing
// aggregate-topics table yields an empty map, not an error.
func (s *BaseStore) GetAggTopicMap(ctx context.Context) (map[AggTopicKey]int64, error) {
	aggMap := make(map[AggTopicKey]int64)
	// The aggregate table names stay empty until aggregate support is
	// initialized; same outcome as a missing table.
	if s.tables.AggTopics == "" {
		return aggMap, nil
	}
	rows, err := s.queryContext(ctx, fmt.Sprintf(
		"SELECT agg_topic_id, LOWER(agg_topic_name), agg_type, agg_time_period FROM %s ORDER BY agg_topic_id",
		quoteIdent(s.tables.AggTopics)))
	if err != nil {
		if s.dialect.IsUndefinedTable(err) {
			return aggMap, nil
		}
		return nil, fmt.Errorf("reading aggregate topic map: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var key AggTopicKey
		if err := rows.Scan(&id, &key.Name, &key.Type, &key.Period); err != nil {
			return nil, fmt.Errorf("scanning aggregate topic row: %w", err)
		}
		aggMap[key] = id
	}
	return aggMap, rows.Err()
}

// aggMetadata is the shape of the aggregate metadata blob this driver
// cares about; hosts may store more fields alongside it.
type aggMetadata struct {
	ConfiguredTopics []string `json:"configured_topics"`
}

// GetAggTopics joins aggregate topic definitions with their metadata and
// surfaces the configured raw topics behind each rollup. Missing aggregate
// tables yield an empty result, same as GetAggTopicMap.
func (s *BaseStore) GetAggTopics(ctx context.Context) ([]AggTopic, error) {
	if s.tables.AggTopics == "" || s.tables.AggMeta == "" {
		return []AggTopic{}, nil
	}
	rows, err := s.queryContext(ctx, fmt.Sprintf(`
		SELECT agg_topic_name, agg_type, agg_time_period, metadata
		FROM %s AS t, %s AS m
		WHERE t.agg_topic_id = m.agg_topic_id
		ORDER BY t.agg_topic_id`,
		quoteIdent(s.tables.AggTopics), quoteIdent(s.tables.AggMeta)))
	if err != nil {
		if s.dialect.IsUndefinedTable(err) {
			return []AggTopic{}, nil
		}
		return nil, fmt.Errorf("reading aggregate topics: %w", err)
	}
	defer rows.Close()

	topics := []AggTopic{}
	for rows.Next() {
		var t AggTopic
		var metaRaw string
		if err := rows.Scan(&t.Name, &t.Type, &t.Period, &metaRaw); err != nil {
			return nil, fmt.Errorf("scanning aggregate topic: %w", err)
		}
		var meta aggMetadata
		if err := json.Unmarshal([]byte(metaRaw), &meta); err != nil {
			return nil, fmt.Errorf("decoding metadata for aggregate topic %q: %w", t.Name, err)
		}
		t.ConfiguredTopics = meta.ConfiguredTopics
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// QueryTopicsByPattern matches topic names case-insensitively against the
// pattern and returns a name-to-id map. The match operator is
// dialect-native; see Dialect.PatternMatch for the SQLite caveat.
func (s *BaseStore) QueryTopicsByPattern(ctx context.Context, pattern string) (map[string]int64, error) {
	rows, err := s.queryContext(ctx, fmt.Sprintf(
		"SELECT topic_name, topic_id FROM %s WHERE %s ORDER BY topic_id",
		quoteIdent(s.tables.Topics), s.dialect.PatternMatch("topic_name")), pattern)
	if err != nil {
		return nil, fmt.Errorf("matching topics against %q: %w", pattern, err)
	}
	defer rows.Close()

	matches := make(map[string]int64)
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("scanning topic match: %w", err)
		}
		matches[name] = id
	}
	return matches, rows.Err()
}
