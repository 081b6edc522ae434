package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/credstore/internal/dbx"
	"github.com/dmitrijs2005/credstore/internal/server/repositories/users"
)

// RepositoryManager vends dialect-specific repositories bound to a handle
// and migrates the schema of that dialect.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// NewRepositoryManager returns the manager for a dbx driver name.
func NewRepositoryManager(driver string) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	case dbx.DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("%w: %q", dbx.ErrUnsupportedDriver, driver)
	}
}
