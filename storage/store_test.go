package storage

import (
	"context"
	"testing"
	"time"

	"timescribe/config"
)

// newTestStore returns a fresh in-memory store with the historian schema
// created.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(":memory:", DefaultTableNames())
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.SetupHistorianTables(context.Background()); err != nil {
		t.Fatalf("setting up historian tables: %v", err)
	}
	return store
}

// mustInsertTopic registers a topic and returns its id.
func mustInsertTopic(t *testing.T, store *SQLiteStore, name string) int64 {
	t.Helper()
	id, err := store.InsertTopic(context.Background(), name)
	if err != nil {
		t.Fatalf("inserting topic %q: %v", name, err)
	}
	return id
}

// mustWrite flushes one reading through the bulk writer.
func mustWrite(t *testing.T, store *SQLiteStore, ts time.Time, topicID int64, value any) {
	t.Helper()
	w := store.BulkInsert()
	if err := w.Add(ts, topicID, value); err != nil {
		t.Fatalf("buffering reading: %v", err)
	}
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("flushing reading: %v", err)
	}
}

func TestNewStore_Drivers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *config.DatabaseConfig
		wantErr bool
	}{
		{
			name:    "empty config defaults to sqlite",
			cfg:     &config.DatabaseConfig{Path: ":memory:"},
			wantErr: false,
		},
		{
			name:    "explicit sqlite driver",
			cfg:     &config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
			wantErr: false,
		},
		{
			name:    "modernc alias",
			cfg:     &config.DatabaseConfig{Driver: "modernc", Path: ":memory:"},
			wantErr: false,
		},
		{
			name:    "redshift without connection details",
			cfg:     &config.DatabaseConfig{Driver: "redshift"},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     &config.DatabaseConfig{Driver: "oracle"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, err := NewStore(tt.cfg, DefaultTableNames())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				store.Close()
			}
		})
	}
}

func TestSetupHistorianTables_Idempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	// Second run must be a no-op, not an error.
	if err := store.SetupHistorianTables(context.Background()); err != nil {
		t.Fatalf("second setup failed: %v", err)
	}
}

func TestSetTableNames(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	names := TableNames{Data: "d", Topics: "t", Meta: "m", AggTopics: "at", AggMeta: "am"}
	store.SetTableNames(names)
	if got := store.TableNames(); got != names {
		t.Errorf("TableNames() = %+v, want %+v", got, names)
	}
}
