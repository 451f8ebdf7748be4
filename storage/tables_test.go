package storage

import (
	"context"
	"testing"
)

func TestRecordTableDefinitions_Idempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	defs := TableDefinitions{Data: "data", Topics: "topics", Meta: "meta"}

	if err := store.RecordTableDefinitions(ctx, defs, "registry"); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := store.RecordTableDefinitions(ctx, defs, "registry"); err != nil {
		t.Fatalf("second record: %v", err)
	}

	// The second call must update in place, not duplicate rows.
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM "registry"`).Scan(&count); err != nil {
		t.Fatalf("counting registry rows: %v", err)
	}
	if count != 4 {
		t.Errorf("registry rows = %d, want 4", count)
	}

	names, err := store.ReadTablenamesFromDB(ctx, "registry")
	if err != nil {
		t.Fatalf("reading tablenames: %v", err)
	}
	want := TableNames{
		Data: "data", Topics: "topics", Meta: "meta",
		AggTopics: "aggregate_topics", AggMeta: "aggregate_meta",
	}
	if names != want {
		t.Errorf("ReadTablenamesFromDB() = %+v, want %+v", names, want)
	}
}

func TestRecordTableDefinitions_Rename(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := TableDefinitions{Data: "data", Topics: "topics", Meta: "meta"}
	if err := store.RecordTableDefinitions(ctx, first, "registry"); err != nil {
		t.Fatalf("first record: %v", err)
	}

	second := TableDefinitions{Data: "readings", Topics: "points", Meta: "meta"}
	if err := store.RecordTableDefinitions(ctx, second, "registry"); err != nil {
		t.Fatalf("second record: %v", err)
	}

	names, err := store.ReadTablenamesFromDB(ctx, "registry")
	if err != nil {
		t.Fatalf("reading tablenames: %v", err)
	}
	if names.Data != "readings" || names.Topics != "points" {
		t.Errorf("rename not applied: %+v", names)
	}
	if names.AggTopics != "aggregate_points" {
		t.Errorf("AggTopics = %q, want aggregate_points", names.AggTopics)
	}
}

func TestReadTablenamesFromDB_Prefix(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	defs := TableDefinitions{Data: "data", Topics: "topics", Meta: "meta", Prefix: "plant1"}

	if err := store.RecordTableDefinitions(ctx, defs, "registry"); err != nil {
		t.Fatalf("recording definitions: %v", err)
	}

	names, err := store.ReadTablenamesFromDB(ctx, "registry")
	if err != nil {
		t.Fatalf("reading tablenames: %v", err)
	}

	want := TableNames{
		Data:      "plant1_data",
		Topics:    "plant1_topics",
		Meta:      "plant1_meta",
		AggTopics: "plant1_aggregate_topics",
		AggMeta:   "plant1_aggregate_meta",
	}
	if names != want {
		t.Errorf("ReadTablenamesFromDB() = %+v, want %+v", names, want)
	}
}

func TestReadTablenamesFromDB_MissingRegistry(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.ReadTablenamesFromDB(context.Background(), "never_created"); err == nil {
		t.Fatal("expected error for missing registry table, got nil")
	}
}

func TestRecordTableDefinitions_RejectsBadIdentifier(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defs := TableDefinitions{Data: "data", Topics: "topics", Meta: "meta"}
	err := store.RecordTableDefinitions(context.Background(), defs, `bad"name; DROP TABLE x`)
	if err == nil {
		t.Fatal("expected identifier rejection, got nil")
	}
}

func TestSetupAggregateHistorianTables(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	defs := TableDefinitions{Data: "data", Topics: "topics", Meta: "meta"}

	if err := store.RecordTableDefinitions(ctx, defs, "registry"); err != nil {
		t.Fatalf("recording definitions: %v", err)
	}
	if err := store.SetupAggregateHistorianTables(ctx, "registry"); err != nil {
		t.Fatalf("aggregate setup: %v", err)
	}

	// Aggregate tables now exist, so the map reads succeed and are empty.
	aggMap, err := store.GetAggTopicMap(ctx)
	if err != nil {
		t.Fatalf("GetAggTopicMap: %v", err)
	}
	if len(aggMap) != 0 {
		t.Errorf("fresh aggregate topic map has %d entries", len(aggMap))
	}
}
