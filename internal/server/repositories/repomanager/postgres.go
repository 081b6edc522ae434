// Package repomanager wires repository constructors and goose schema
// migrations together for each supported SQL dialect.
package repomanager

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/dmitrijs2005/credstore/internal/dbx"
	"github.com/dmitrijs2005/credstore/internal/server/migrations"
	"github.com/dmitrijs2005/credstore/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// upMigrations applies every pending migration in fsys through a goose
// Provider owned by this call. It is a seam for tests.
var upMigrations = func(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// runMigrations applies the embedded directory of one dialect.
func runMigrations(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	fsys, err := fs.Sub(migrations.Migrations, dir)
	if err != nil {
		return err
	}
	return upMigrations(ctx, db, dialect, fsys)
}

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, goose.DialectPostgres, "postgres")
}

// NewPostgresRepositoryManager constructs a PostgreSQL RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
