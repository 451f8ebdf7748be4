package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// identPattern restricts identifiers to the characters the historian ever
// generates. Anything else is rejected before it can reach statement text.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent rejects identifiers that could smuggle SQL into a statement.
func validIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// quoteIdent quotes an identifier for use in statement text. Values never
// go through this path; they are always bound as parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// The statement builders below are exposed so hosts can compose their own
// inserts and updates against the topic and metadata tables. Each returns a
// parameterized statement in the active dialect's placeholder style.

// InsertDataQuery returns the single-row insert for the data table.
func (s *BaseStore) InsertDataQuery() string {
	return s.query(fmt.Sprintf("INSERT INTO %s VALUES (?, ?, ?)", quoteIdent(s.tables.Data)))
}

// InsertMetaQuery returns the insert for the metadata table.
func (s *BaseStore) InsertMetaQuery() string {
	return s.query(fmt.Sprintf("INSERT INTO %s VALUES (?, ?)", quoteIdent(s.tables.Meta)))
}

// InsertTopicQuery returns the insert for the topics table.
func (s *BaseStore) InsertTopicQuery() string {
	return s.query(fmt.Sprintf("INSERT INTO %s (topic_name) VALUES (?)", quoteIdent(s.tables.Topics)))
}

// UpdateTopicQuery returns the rename-by-id update for the topics table.
func (s *BaseStore) UpdateTopicQuery() string {
	return s.query(fmt.Sprintf("UPDATE %s SET topic_name = ? WHERE topic_id = ?", quoteIdent(s.tables.Topics)))
}

// InsertAggTopicQuery returns the insert for the aggregate topics table.
func (s *BaseStore) InsertAggTopicQuery() string {
	return s.query(fmt.Sprintf(
		"INSERT INTO %s (agg_topic_name, agg_type, agg_time_period) VALUES (?, ?, ?)",
		quoteIdent(s.tables.AggTopics)))
}

// UpdateAggTopicQuery returns the rename-by-id update for the aggregate
// topics table.
func (s *BaseStore) UpdateAggTopicQuery() string {
	return s.query(fmt.Sprintf("UPDATE %s SET agg_topic_name = ? WHERE agg_topic_id = ?", quoteIdent(s.tables.AggTopics)))
}

// ReplaceAggMetaQuery returns the insert for the aggregate metadata table.
func (s *BaseStore) ReplaceAggMetaQuery() string {
	return s.query(fmt.Sprintf("INSERT INTO %s VALUES (?, ?)", quoteIdent(s.tables.AggMeta)))
}

// InsertAggregateQuery returns the insert for a derived aggregate table.
func (s *BaseStore) InsertAggregateQuery(tableName string) (string, error) {
	if err := validIdent(tableName); err != nil {
		return "", err
	}
	return s.query(fmt.Sprintf("INSERT INTO %s VALUES (?, ?, ?, ?)", quoteIdent(tableName))), nil
}
