// Command timescribe bootstraps a historian table set: it opens the
// configured backend, records the table definitions in the name registry,
// resolves the physical names, and creates the schema idempotently.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"timescribe/logger"
	"timescribe/storage"
)

func main() {
	configPath := flag.String("config", "", "path to timescribe.toml (default: platform search paths)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "timescribe:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.ParseLevel(cfg.Logging.Level), cfg.Logging.Dir)
	if err != nil {
		return err
	}
	defer log.Close()
	storage.SetLogger(log)

	store, err := storage.NewStore(&cfg.Database, storage.TableNames{
		Data:   cfg.Tables.Data,
		Topics: cfg.Tables.Topics,
		Meta:   cfg.Tables.Meta,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	defs := storage.TableDefinitions{
		Data:   cfg.Tables.Data,
		Topics: cfg.Tables.Topics,
		Meta:   cfg.Tables.Meta,
		Prefix: cfg.Tables.Prefix,
	}
	if err := store.RecordTableDefinitions(ctx, defs, cfg.Tables.Registry); err != nil {
		return err
	}

	names, err := store.ReadTablenamesFromDB(ctx, cfg.Tables.Registry)
	if err != nil {
		return err
	}
	store.SetTableNames(names)

	if err := store.SetupHistorianTables(ctx); err != nil {
		return err
	}
	if err := store.SetupAggregateHistorianTables(ctx, cfg.Tables.Registry); err != nil {
		return err
	}

	log.Info("Historian storage initialized",
		"driver", cfg.Database.EffectiveDriver(),
		"data", names.Data, "topics", names.Topics, "meta", names.Meta)
	return nil
}
