package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credstore/internal/common"
	"github.com/dmitrijs2005/credstore/internal/dbx"
	"github.com/dmitrijs2005/credstore/internal/server/models"
)

// SQLRepository runs the users queries of one dialect through a dbx.DBTX.
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

// NewPostgresRepository binds a PostgreSQL repository to db.
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}

// NewSQLiteRepository binds a SQLite repository to db.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.UserRecord, error) {
	user := &models.UserRecord{}
	var displayName sql.NullString

	err := r.db.QueryRowContext(ctx, r.q.selectByUsername, username).
		Scan(&user.Username, &displayName, &user.Email, &user.PasswordHash, &user.Salt, &user.Iterations)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, common.ErrorNotFound)
		}
		return nil, common.Transient("select user", err)
	}

	if displayName.Valid {
		user.DisplayName = &displayName.String
	}
	return user, nil
}

func (r *SQLRepository) InsertIfAbsent(ctx context.Context, user *models.UserRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q.insertIfAbsent,
		user.Username, nullString(user.DisplayName), user.Email, user.PasswordHash, user.Salt, user.Iterations)
	if err != nil {
		return 0, common.Transient("insert user", err)
	}
	return rowsAffected(res, "insert user")
}

// Update overwrites every column of the row keyed by username. Renaming onto
// a taken username reports common.ErrorDuplicateEntry.
func (r *SQLRepository) Update(ctx context.Context, username string, user *models.UserRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q.update,
		user.Username, nullString(user.DisplayName), user.Email, user.PasswordHash, user.Salt, user.Iterations,
		username)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, fmt.Errorf("rename %q to %q: %w", username, user.Username, common.ErrorDuplicateEntry)
		}
		return 0, common.Transient("update user", err)
	}
	return rowsAffected(res, "update user")
}

func (r *SQLRepository) Delete(ctx context.Context, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q.delete, username)
	if err != nil {
		return 0, common.Transient("delete user", err)
	}
	return rowsAffected(res, "delete user")
}

func rowsAffected(res sql.Result, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.Transient(op, err)
	}
	return n, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
