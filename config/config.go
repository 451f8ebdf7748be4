// Package config provides configuration loading for timescribe components.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"
)

// DatabaseConfig holds backend connection settings.
type DatabaseConfig struct {
	Driver   string `toml:"driver"` // "sqlite" (default), "redshift", "postgres"
	Path     string `toml:"path"`   // SQLite database file path
	DSN      string `toml:"dsn"`    // full connection string, overrides the fields below
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

// EffectiveDriver returns the configured driver, defaulting to sqlite for
// single-node installs.
func (c *DatabaseConfig) EffectiveDriver() string {
	if c.Driver == "" {
		return "sqlite"
	}
	return c.Driver
}

// BuildDSN returns the connection string for wire-protocol backends. An
// explicit DSN wins; otherwise one is assembled from the individual fields.
func (c *DatabaseConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Host == "" || c.Name == "" {
		return ""
	}
	port := c.Port
	if port == 0 {
		port = 5439
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", c.Host, port, c.Name, sslmode)
	if c.User != "" {
		dsn += " user=" + c.User
	}
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// TablesConfig names the historian tables and the registry that records
// them. Prefix, when set, is applied to every physical name.
type TablesConfig struct {
	Data     string `toml:"data"`
	Topics   string `toml:"topics"`
	Meta     string `toml:"meta"`
	Prefix   string `toml:"prefix"`
	Registry string `toml:"registry"`
}

// ApplyDefaults fills unset table names with the conventional ones.
func (c *TablesConfig) ApplyDefaults() {
	if c.Data == "" {
		c.Data = "data"
	}
	if c.Topics == "" {
		c.Topics = "topics"
	}
	if c.Meta == "" {
		c.Meta = "meta"
	}
	if c.Registry == "" {
		c.Registry = "timescribe_table_definitions"
	}
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	Dir   string `toml:"dir"`
}

// ApplyDatabaseEnvOverrides applies environment variable overrides.
func ApplyDatabaseEnvOverrides(cfg *DatabaseConfig) {
	if val := os.Getenv("TIMESCRIBE_DB_DRIVER"); val != "" {
		cfg.Driver = val
	}
	if val := os.Getenv("TIMESCRIBE_DB_PATH"); val != "" {
		cfg.Path = val
	}
	if val := os.Getenv("TIMESCRIBE_DB_DSN"); val != "" {
		cfg.DSN = val
	}
	if val := os.Getenv("TIMESCRIBE_DB_HOST"); val != "" {
		cfg.Host = val
	}
	if val := os.Getenv("TIMESCRIBE_DB_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Port = port
		}
	}
	if val := os.Getenv("TIMESCRIBE_DB_USER"); val != "" {
		cfg.User = val
	}
	if val := os.Getenv("TIMESCRIBE_DB_PASSWORD"); val != "" {
		cfg.Password = val
	}
	if val := os.Getenv("TIMESCRIBE_DB_NAME"); val != "" {
		cfg.Name = val
	}
}

// ApplyLoggingEnvOverrides applies environment variable overrides.
func ApplyLoggingEnvOverrides(cfg *LoggingConfig) {
	if val := os.Getenv("TIMESCRIBE_LOG_LEVEL"); val != "" {
		cfg.Level = val
	}
}

// FindConfigFile searches for a config file in platform-appropriate
// locations and returns the path and contents of the first match.
func FindConfigFile(filename string) (string, []byte, error) {
	for _, path := range GetConfigSearchPaths(filename) {
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}
	return "", nil, fmt.Errorf("%s not found in any search path", filename)
}

// GetConfigSearchPaths returns an ordered list of paths to search for
// config files.
func GetConfigSearchPaths(filename string) []string {
	var searchPaths []string

	switch runtime.GOOS {
	case "windows":
		searchPaths = append(searchPaths, filepath.Join(os.Getenv("ProgramData"), "Timescribe", filename))
	case "darwin":
		searchPaths = append(searchPaths, filepath.Join("/Library/Application Support", "Timescribe", filename))
	default:
		searchPaths = append(searchPaths, filepath.Join("/etc/timescribe", filename))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		switch runtime.GOOS {
		case "windows":
			searchPaths = append(searchPaths, filepath.Join(homeDir, "AppData", "Local", "Timescribe", filename))
		case "darwin":
			searchPaths = append(searchPaths, filepath.Join(homeDir, "Library", "Application Support", "Timescribe", filename))
		default:
			searchPaths = append(searchPaths, filepath.Join(homeDir, ".config", "timescribe", filename))
		}
	}

	if exePath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(exePath), filename))
	}

	searchPaths = append(searchPaths, filepath.Join(".", filename))
	return searchPaths
}

// DecodeTOML parses TOML config data into v.
func DecodeTOML(data []byte, v any) error {
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}
