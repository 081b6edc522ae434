package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/credstore/internal/flagx"
)

// Flags recognised by parseFlags. Anything else on the command line belongs
// to the CLI subcommands.
var configFlags = []string{
	"-driver", "-host", "-port", "-user", "-dbname", "-path", "-max-conns", "-log-level",
}

// FlagNames lists every flag the config loader consumes, -c/-config
// included, so command parsers can step over them.
func FlagNames() []string {
	return append([]string{"-c", "-config"}, configFlags...)
}

// parseFlags populates Config fields from command-line flags.
//
//	-driver string     database driver: pgx or sqlite
//	-host string       PostgreSQL host
//	-port int          PostgreSQL port
//	-user string       PostgreSQL user
//	-dbname string     PostgreSQL database
//	-path string       SQLite database file
//	-max-conns int     connection pool size
//	-log-level string  debug, info, warn or error
//
// os.Args is first filtered with flagx.FilterArgs so subcommand flags do not
// collide with these.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], configFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx or sqlite)")
	fs.StringVar(&config.DatabaseHost, "host", config.DatabaseHost, "database host")
	fs.IntVar(&config.DatabasePort, "port", config.DatabasePort, "database port")
	fs.StringVar(&config.DatabaseUser, "user", config.DatabaseUser, "database user")
	fs.StringVar(&config.DatabaseName, "dbname", config.DatabaseName, "database name")
	fs.StringVar(&config.DatabasePath, "path", config.DatabasePath, "sqlite database file")
	fs.IntVar(&config.MaxOpenConns, "max-conns", config.MaxOpenConns, "connection pool size")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: flags: %w", ErrInvalidConfig, err)
	}
	return nil
}
