package storage

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Timestamps are stored as fixed-width microsecond UTC strings so that
// range comparisons behave identically on both backends, and reported back
// with an explicit UTC offset marker.
const (
	storedTimeLayout = "2006-01-02 15:04:05.000000"
	reportTimeLayout = "2006-01-02T15:04:05.000000-07:00"
)

// storedTime converts a timestamp to its canonical stored form.
func storedTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// reportTime formats a timestamp the way query results present it.
func reportTime(t time.Time) string {
	return t.UTC().Format(reportTimeLayout)
}

// parseStoredTime normalizes a scanned timestamp column. SQLite hands back
// the stored text; the Postgres wire hands back time.Time.
func parseStoredTime(v any) (time.Time, error) {
	switch ts := v.(type) {
	case time.Time:
		return ts.UTC(), nil
	case []byte:
		return parseTimeString(string(ts))
	case string:
		return parseTimeString(ts)
	}
	return time.Time{}, fmt.Errorf("unexpected timestamp column type %T", v)
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range []string{storedTimeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// encodeValue serializes a reading value for the value_string column.
func encodeValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serializing value: %w", err)
	}
	return string(data), nil
}

// decodeValue deserializes a value_string column.
func decodeValue(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("deserializing value: %w", err)
	}
	return v, nil
}

// nullString returns a sql.NullString for optional string values. Empty
// strings are treated as NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// rollbackQuietly rolls a transaction back without failing the cleanup
// path: a transaction that already committed or rode a broken connection
// reports "no rollback occurred" in the log instead of raising.
func rollbackQuietly(tx *sql.Tx) {
	if tx == nil {
		return
	}
	err := tx.Rollback()
	if err == nil || errors.Is(err, sql.ErrTxDone) {
		return
	}
	if errors.Is(err, driver.ErrBadConn) {
		logWarn("Rollback did not occur, connection unusable")
		return
	}
	logWarn("Rollback failed", "error", err)
}
