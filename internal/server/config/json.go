package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/credstore/internal/flagx"
)

// JsonConfig is the on-disk shape of the configuration file. The database
// password is deliberately absent; see parseEnv.
type JsonConfig struct {
	DatabaseDriver string `json:"database_driver"`
	DatabaseHost   string `json:"database_host"`
	DatabasePort   int    `json:"database_port"`
	DatabaseUser   string `json:"database_user"`
	DatabaseName   string `json:"database_name"`
	DatabasePath   string `json:"database_path"`
	MaxOpenConns   int    `json:"max_open_conns"`
	LogLevel       string `json:"log_level"`
}

// parseJson overlays values from the file named by -c / -config. Fields
// missing from the file keep their current value. An unreadable file or
// invalid JSON is ErrInvalidConfig.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, jsonConfigFile, err)
	}

	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseHost, c.DatabaseHost)
	setInt(&config.DatabasePort, c.DatabasePort)
	setString(&config.DatabaseUser, c.DatabaseUser)
	setString(&config.DatabaseName, c.DatabaseName)
	setString(&config.DatabasePath, c.DatabasePath)
	setInt(&config.MaxOpenConns, c.MaxOpenConns)
	setString(&config.LogLevel, c.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
