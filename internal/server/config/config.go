// Package config handles configuration for the credential store, including
// defaults, JSON overlay, command-line flags and the database secret taken
// from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credstore/internal/common"
	"github.com/dmitrijs2005/credstore/internal/dbx"
)

var (
	ErrMissingSecret = errors.New("database password not set in " + common.AuthDBPasswordEnv)
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds runtime settings.
//
// Fields:
//   - DatabaseDriver: "pgx" (PostgreSQL) or "sqlite".
//   - DatabaseHost / DatabasePort / DatabaseUser / DatabaseName: PostgreSQL target.
//   - DatabasePassword: only ever read from AUTHDBPASS.
//   - DatabasePath: SQLite database file.
//   - MaxOpenConns: connection pool limit.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DatabaseDriver   string
	DatabaseHost     string
	DatabasePort     int
	DatabaseUser     string
	DatabaseName     string
	DatabasePassword string
	DatabasePath     string
	MaxOpenConns     int
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = dbx.DriverPostgres
	c.DatabaseHost = "localhost"
	c.DatabasePort = 5432
	c.DatabaseUser = "webserver"
	c.DatabaseName = "users"
	c.DatabasePath = "credstore.db"
	c.MaxOpenConns = 10
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, command-line flags and finally the
// environment. A malformed file or flag value is ErrInvalidConfig.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	return cfg, nil
}

// Validate fails fast on settings the store cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case dbx.DriverPostgres:
		if c.DatabasePassword == "" {
			return ErrMissingSecret
		}
		if c.DatabasePort < 1 || c.DatabasePort > 65535 {
			return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.DatabasePort)
		}
	case dbx.DriverSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: empty sqlite path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, dbx.ErrUnsupportedDriver, c.DatabaseDriver)
	}

	if c.MaxOpenConns < 1 {
		return fmt.Errorf("%w: max open connections %d", ErrInvalidConfig, c.MaxOpenConns)
	}
	return nil
}

// Connection returns the settings dbx.Open needs.
func (c *Config) Connection() dbx.ConnectionConfig {
	return dbx.ConnectionConfig{
		Driver:       c.DatabaseDriver,
		Host:         c.DatabaseHost,
		Port:         uint16(c.DatabasePort),
		User:         c.DatabaseUser,
		Password:     c.DatabasePassword,
		Database:     c.DatabaseName,
		Path:         c.DatabasePath,
		MaxOpenConns: c.MaxOpenConns,
	}
}
