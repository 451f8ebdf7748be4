package storage

import (
	"context"
	"testing"
	"time"
)

func TestBulkWriter_EmptyFlush(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	w := store.BulkInsert()
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("empty flush should be a no-op, got %v", err)
	}
}

func TestBulkWriter_BatchWrite(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	id := mustInsertTopic(t, store, "campus/building/temp")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	w := store.BulkInsert()
	for i := 0; i < 5; i++ {
		if err := w.Add(base.Add(time.Duration(i)*time.Minute), id, float64(i)); err != nil {
			t.Fatalf("buffering row %d: %v", i, err)
		}
	}
	if w.Pending() != 5 {
		t.Errorf("Pending() = %d, want 5", w.Pending())
	}
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flushing: %v", err)
	}
	if w.Pending() != 0 {
		t.Errorf("Pending() after flush = %d, want 0", w.Pending())
	}

	values, err := store.Query(ctx, []int64{id}, map[int64]string{id: "campus/building/temp"}, QueryOptions{})
	if err != nil {
		t.Fatalf("querying: %v", err)
	}
	if got := len(values["campus/building/temp"]); got != 5 {
		t.Errorf("stored %d readings, want 5", got)
	}
}

func TestBulkWriter_DuplicateBatchIsAtomic(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	id := mustInsertTopic(t, store, "dup/topic")

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	w := store.BulkInsert()
	if err := w.Add(ts, id, 1.0); err != nil {
		t.Fatalf("buffering: %v", err)
	}
	if err := w.Add(ts, id, 2.0); err != nil {
		t.Fatalf("buffering: %v", err)
	}
	if err := w.Flush(ctx); err == nil {
		t.Fatal("expected uniqueness violation, got nil")
	}

	// The failed statement must not have applied either row.
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM "data"`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 0 {
		t.Errorf("failed batch left %d rows behind", count)
	}
}

func TestBulkWriter_ValueEncodingError(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	w := store.BulkInsert()
	// Channels have no JSON encoding; Add must reject the row up front.
	if err := w.Add(time.Now(), 1, make(chan int)); err == nil {
		t.Fatal("expected encoding error, got nil")
	}
	if w.Pending() != 0 {
		t.Errorf("rejected row was buffered, Pending() = %d", w.Pending())
	}
}
