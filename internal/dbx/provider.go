package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/credstore/internal/filex"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// ConnectionConfig describes the pool the provider opens.
// Path is only used by the SQLite driver; the network fields only by PostgreSQL.
type ConnectionConfig struct {
	Driver       string
	Host         string
	Port         uint16
	User         string
	Password     string
	Database     string
	Path         string
	MaxOpenConns int
}

// sqlOpenDB and sqlOpen are seams for tests.
var (
	sqlOpenDB = stdlib.OpenDB
	sqlOpen   = sql.Open
)

// Open builds a pooled, credentialed *sql.DB for cfg and verifies it with a
// ping. The caller owns the returned pool and must Close it.
func Open(ctx context.Context, cfg ConnectionConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case DriverPostgres:
		db, err = openPostgres(cfg)
	case DriverSQLite:
		if _, err := filex.EnsureParentDir(cfg.Path); err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		db, err = sqlOpen(DriverSQLite, sqliteDSN(cfg.Path))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, nil
}

func openPostgres(cfg ConnectionConfig) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig("")
	if err != nil {
		return nil, err
	}
	if cfg.Host != "" {
		connCfg.Host = cfg.Host
	}
	if cfg.Port != 0 {
		connCfg.Port = cfg.Port
	}
	connCfg.User = cfg.User
	connCfg.Password = cfg.Password
	connCfg.Database = cfg.Database

	return sqlOpenDB(*connCfg), nil
}

// sqliteDSN turns a file path into a DSN with a busy timeout so concurrent
// writers wait for the lock instead of failing immediately.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + "_pragma=busy_timeout(5000)"
}
