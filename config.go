package main

import (
	"fmt"
	"os"

	"timescribe/config"
)

// ServerConfig is the historian bootstrap configuration, loaded from
// timescribe.toml.
type ServerConfig struct {
	Database config.DatabaseConfig `toml:"database"`
	Tables   config.TablesConfig   `toml:"tables"`
	Logging  config.LoggingConfig  `toml:"logging"`
}

const configFilename = "timescribe.toml"

// loadConfig reads the config from an explicit path or the platform search
// paths, applies defaults and environment overrides, and returns it. A
// missing config file is not fatal: defaults describe a local SQLite
// install.
func loadConfig(explicitPath string) (*ServerConfig, error) {
	cfg := &ServerConfig{}

	var data []byte
	var path string
	var err error
	if explicitPath != "" {
		path = explicitPath
		data, err = os.ReadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", explicitPath, err)
		}
	} else {
		path, data, err = config.FindConfigFile(configFilename)
		if err != nil {
			path = "<defaults>"
			data = nil
		}
	}

	if len(data) > 0 {
		if err := config.DecodeTOML(data, cfg); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	cfg.Tables.ApplyDefaults()
	config.ApplyDatabaseEnvOverrides(&cfg.Database)
	config.ApplyLoggingEnvOverrides(&cfg.Logging)
	return cfg, nil
}
