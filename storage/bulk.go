package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BulkWriter accumulates the rows of one collection cycle and writes them
// as a single multi-row INSERT. Rows are buffered in memory; nothing
// touches the backend until Flush.
//
// A flush is all-or-nothing: a (topic_id, ts) uniqueness violation anywhere
// in the batch fails the whole statement with no partial application.
type BulkWriter struct {
	store *BaseStore
	args  []any
	rows  int
}

// BulkInsert opens a write session for the data table.
func (s *BaseStore) BulkInsert() *BulkWriter {
	return &BulkWriter{store: s}
}

// Add buffers one reading. The value is serialized immediately so encoding
// errors surface at submission time, not at flush.
func (w *BulkWriter) Add(ts time.Time, topicID int64, value any) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	w.args = append(w.args, storedTime(ts), topicID, encoded)
	w.rows++
	return nil
}

// Pending returns the number of buffered rows.
func (w *BulkWriter) Pending() int {
	return w.rows
}

// Flush writes all buffered rows in one statement and clears the buffer.
// With nothing buffered it issues no statement at all.
func (w *BulkWriter) Flush(ctx context.Context) error {
	if w.rows == 0 {
		return nil
	}

	tuples := make([]string, w.rows)
	for i := range tuples {
		tuples[i] = "(" + PlaceholderSet(3) + ")"
	}
	stmt := fmt.Sprintf("INSERT INTO %s VALUES %s",
		quoteIdent(w.store.tables.Data), strings.Join(tuples, ", "))

	if _, err := w.store.execContext(ctx, stmt, w.args...); err != nil {
		return fmt.Errorf("bulk inserting %d rows: %w", w.rows, err)
	}

	logDebug("Flushed bulk insert", "rows", w.rows, "table", w.store.tables.Data)
	w.args = nil
	w.rows = 0
	return nil
}
