// Package users implements single-statement queries against the users table
// for the PostgreSQL and SQLite dialects.
package users

import (
	"context"

	"github.com/dmitrijs2005/credstore/internal/server/models"
)

// Repository is the storage port of the credential store. Writes return the
// number of affected rows and leave their interpretation to the caller.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*models.UserRecord, error)
	// InsertIfAbsent creates user unless the username is taken; it is a
	// single conditional write and returns 0 on conflict.
	InsertIfAbsent(ctx context.Context, user *models.UserRecord) (int64, error)
	Update(ctx context.Context, username string, user *models.UserRecord) (int64, error)
	Delete(ctx context.Context, username string) (int64, error)
}
