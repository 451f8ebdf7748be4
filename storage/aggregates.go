package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// aggregationList is the closed set of aggregate functions the driver will
// ever place in statement text. The user-supplied name is only a lookup
// key; the map value is what reaches the SQL, so an unlisted function can
// never be forwarded to the backend.
var aggregationList = []string{
	"AVG", "MIN", "MAX", "COUNT", "SUM", "BIT_AND", "BIT_OR",
	"BOOL_AND", "BOOL_OR", "MEDIAN", "STDDEV", "STDDEV_POP",
	"STDDEV_SAMP", "VAR_POP", "VAR_SAMP", "VARIANCE",
}

var aggregationFuncs = func() map[string]string {
	m := make(map[string]string, len(aggregationList))
	for _, name := range aggregationList {
		m[name] = name
	}
	return m
}()

// GetAggregationList returns the supported aggregate functions.
func (s *BaseStore) GetAggregationList() []string {
	out := make([]string, len(aggregationList))
	copy(out, aggregationList)
	return out
}

// CollectAggregate applies the whitelisted aggregate function to the
// values of the given topics, cast to floating point, over the half-open
// window [start, end). It returns the aggregate and the matching row
// count; an empty selection yields (0, 0).
//
// An unrecognized function fails before any statement is issued.
func (s *BaseStore) CollectAggregate(ctx context.Context, topicIDs []int64, aggType string, start, end *time.Time) (float64, int64, error) {
	fn, ok := aggregationFuncs[strings.ToUpper(aggType)]
	if !ok {
		return 0, 0, fmt.Errorf("invalid aggregation type %q", aggType)
	}
	if len(topicIDs) == 0 {
		return 0, 0, nil
	}

	clauses := []string{
		fmt.Sprintf("SELECT %s(%s), COUNT(value_string)", fn, s.dialect.CastToFloat("value_string")),
		fmt.Sprintf("FROM %s", quoteIdent(s.tables.Data)),
		fmt.Sprintf("WHERE topic_id IN (%s)", PlaceholderSet(len(topicIDs))),
	}
	args := make([]any, 0, len(topicIDs)+2)
	for _, id := range topicIDs {
		args = append(args, id)
	}
	if start != nil {
		clauses = append(clauses, "AND ts >= ?")
		args = append(args, storedTime(*start))
	}
	if end != nil {
		clauses = append(clauses, "AND ts < ?")
		args = append(args, storedTime(*end))
	}

	var value sql.NullFloat64
	var count int64
	err := s.queryRowContext(ctx, strings.Join(clauses, "\n"), args...).Scan(&value, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("collecting %s aggregate: %w", fn, err)
	}
	return value.Float64, count, nil
}

// InsertAggregate writes one computed rollup row into the {type}_{period}
// table. topicsList records the raw topic ids the value was computed over
// and is stored NULL when empty.
func (s *BaseStore) InsertAggregate(ctx context.Context, aggType, aggPeriod string, ts time.Time, topicID int64, value any, topicsList []int64) error {
	tableName := aggType + "_" + aggPeriod
	stmt, err := s.InsertAggregateQuery(tableName)
	if err != nil {
		return err
	}
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	var topics string
	if len(topicsList) > 0 {
		if topics, err = encodeValue(topicsList); err != nil {
			return err
		}
	}
	if _, err := s.execContext(ctx, stmt, storedTime(ts), topicID, encoded, nullString(topics)); err != nil {
		return fmt.Errorf("inserting aggregate into %s: %w", tableName, err)
	}
	return nil
}

// CreateAggregateStore creates the physical table for an (aggregate type,
// period) pair if it does not exist. The table name is derived
// deterministically as {type}_{period} and validated before it reaches the
// statement text.
func (s *BaseStore) CreateAggregateStore(ctx context.Context, aggType, aggPeriod string) error {
	tableName := aggType + "_" + aggPeriod
	if err := validIdent(tableName); err != nil {
		return err
	}

	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			ts %s,
			topic_id INTEGER NOT NULL,
			value_string TEXT NOT NULL,
			topics_list TEXT,
			UNIQUE (ts, topic_id)
		)`, quoteIdent(tableName), s.dialect.SortKeyTimestamp())
	if _, err := s.execContext(ctx, stmt); err != nil {
		return fmt.Errorf("creating aggregate store %s: %w", tableName, err)
	}

	logInfo("Aggregate store ready", "table", tableName)
	return nil
}
