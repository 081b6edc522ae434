package config

import (
	"os"

	"github.com/dmitrijs2005/credstore/internal/common"
)

// parseEnv reads the database password. It is never accepted from flags
// or JSON so it does not end up in shell history or config files.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(common.AuthDBPasswordEnv); ok {
		config.DatabasePassword = v
	}
}
