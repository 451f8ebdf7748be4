package storage

import (
	"context"
	"fmt"
	"strings"
)

// Query runs a time-bounded, paginated, ordered select for each topic id
// and returns the readings keyed by topic name via idNameMap. Topics are
// processed independently, in the order given; there is no cross-topic
// join, trading round trips for statement simplicity.
//
// DISTINCT suppresses duplicate rows that redundant writes at the same
// instant could have left in storage.
func (s *BaseStore) Query(ctx context.Context, topicIDs []int64, idNameMap map[int64]string, opts QueryOptions) (map[string][]Reading, error) {
	tableName := s.tables.Data
	if opts.AggType != "" && opts.AggPeriod != "" {
		tableName = opts.AggType + "_" + opts.AggPeriod
	}
	if err := validIdent(tableName); err != nil {
		return nil, err
	}

	var clauses []string
	args := []any{int64(0)} // topic id slot, rebound per topic

	clauses = append(clauses, fmt.Sprintf(
		"SELECT DISTINCT ts, value_string FROM %s WHERE topic_id = ?", quoteIdent(tableName)))

	// Stored timestamps are UTC; normalize the bounds before comparing.
	start, end := opts.Start, opts.End
	if start != nil && end != nil && start.Equal(*end) {
		clauses = append(clauses, "AND ts = ?")
		args = append(args, storedTime(*start))
	} else {
		if start != nil {
			clauses = append(clauses, "AND ts >= ?")
			args = append(args, storedTime(*start))
		}
		if end != nil {
			clauses = append(clauses, "AND ts < ?")
			args = append(args, storedTime(*end))
		}
	}

	direction := "ASC"
	if opts.Order == LastToFirst {
		direction = "DESC"
	}
	clauses = append(clauses, "ORDER BY ts "+direction)

	if limit := s.dialect.LimitOffset(opts.Count, opts.Skip); limit != "" {
		clauses = append(clauses, limit)
	}

	stmt := strings.Join(clauses, "\n")
	values := make(map[string][]Reading)
	for _, topicID := range topicIDs {
		name, ok := idNameMap[topicID]
		if !ok {
			return nil, fmt.Errorf("no name mapped for topic id %d", topicID)
		}
		args[0] = topicID
		readings, err := s.queryTopicRange(ctx, stmt, args)
		if err != nil {
			return nil, fmt.Errorf("querying topic %q: %w", name, err)
		}
		values[name] = readings
	}
	return values, nil
}

func (s *BaseStore) queryTopicRange(ctx context.Context, stmt string, args []any) ([]Reading, error) {
	rows, err := s.queryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := []Reading{}
	for rows.Next() {
		var tsRaw any
		var valueRaw string
		if err := rows.Scan(&tsRaw, &valueRaw); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		ts, err := parseStoredTime(tsRaw)
		if err != nil {
			return nil, err
		}
		value, err := decodeValue(valueRaw)
		if err != nil {
			return nil, err
		}
		readings = append(readings, Reading{Timestamp: reportTime(ts), Value: value})
	}
	return readings, rows.Err()
}
