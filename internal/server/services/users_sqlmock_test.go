package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credstore/internal/common"
	"github.com/dmitrijs2005/credstore/internal/logging"
	"github.com/dmitrijs2005/credstore/internal/server/models"
	"github.com/dmitrijs2005/credstore/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectRe = `SELECT\s+username,.*FROM\s+users`
	insertRe = `INSERT\s+INTO\s+users`
	updateRe = `UPDATE\s+users`
	deleteRe = `DELETE\s+FROM\s+users`
)

var userColumns = []string{"username", "display_name", "email", "password_hash", "salt", "iterations"}

func newSQLMockStore(t *testing.T) (*UserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewUserStore(db, repomanager.NewPostgresRepositoryManager(), newTestHasher(t), logging.Discard()), mock
}

func existingRow() *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).
		AddRow("alice", "Alice A", "a@x.com", make([]byte, 32), make([]byte, 16), 1500)
}

func TestSQLMock_EmptyEditIssuesNoQueries(t *testing.T) {
	s, mock := newSQLMockStore(t)

	require.NoError(t, s.Edit(context.Background(), "alice", models.UserPatch{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_EditRunsInOneTransaction(t *testing.T) {
	s, mock := newSQLMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectRe).WithArgs("alice").WillReturnRows(existingRow())
	mock.ExpectExec(updateRe).
		WithArgs("alice", "Alice A", "new@x.com", make([]byte, 32), make([]byte, 16), 1500, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Edit(context.Background(), "alice", models.UserPatch{Email: common.Some("new@x.com")}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_EditPasswordSendsFreshCredentials(t *testing.T) {
	s, mock := newSQLMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectRe).WithArgs("alice").WillReturnRows(existingRow())
	mock.ExpectExec(updateRe).
		WithArgs("alice", "Alice A", "a@x.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Edit(context.Background(), "alice", models.UserPatch{Password: common.Some("n3w")}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_EditZeroRowsIsNotFound(t *testing.T) {
	s, mock := newSQLMockStore(t)

	// the row vanished between the read and the write
	mock.ExpectBegin()
	mock.ExpectQuery(selectRe).WithArgs("alice").WillReturnRows(existingRow())
	mock.ExpectExec(updateRe).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.Edit(context.Background(), "alice", models.UserPatch{Email: common.Some("new@x.com")})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_EditManyRowsIsIntegrityFault(t *testing.T) {
	s, mock := newSQLMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectRe).WithArgs("alice").WillReturnRows(existingRow())
	mock.ExpectExec(updateRe).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	err := s.Edit(context.Background(), "alice", models.UserPatch{Email: common.Some("new@x.com")})
	assert.ErrorIs(t, err, common.ErrorDuplicateEntry)
	assert.ErrorIs(t, err, common.ErrorIntegrity)

	var ie *common.IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.EqualValues(t, 2, ie.Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_EditMissingUser(t *testing.T) {
	s, mock := newSQLMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectRe).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := s.Edit(context.Background(), "ghost", models.UserPatch{Email: common.Some("new@x.com")})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_EditBeginAndCommitFailuresAreTransient(t *testing.T) {
	t.Run("begin", func(t *testing.T) {
		s, mock := newSQLMockStore(t)
		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		err := s.Edit(context.Background(), "alice", models.UserPatch{Email: common.Some("new@x.com")})
		assert.ErrorIs(t, err, common.ErrorTransient)
		assert.ErrorContains(t, err, "pool exhausted")
	})

	t.Run("commit", func(t *testing.T) {
		s, mock := newSQLMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectRe).WillReturnRows(existingRow())
		mock.ExpectExec(updateRe).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

		err := s.Edit(context.Background(), "alice", models.UserPatch{Email: common.Some("new@x.com")})
		assert.ErrorIs(t, err, common.ErrorTransient)
	})
}

func TestSQLMock_InsertIsSingleConditionalWrite(t *testing.T) {
	s, mock := newSQLMockStore(t)

	mock.ExpectExec(insertRe).
		WithArgs("alice", nil, "a@x.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Insert(context.Background(), "alice", nil, "a@x.com", "p@ss1")
	assert.ErrorIs(t, err, common.ErrorDuplicateEntry)
	require.NoError(t, mock.ExpectationsWereMet(), "no existence check may precede the insert")
}

func TestSQLMock_TransientErrors(t *testing.T) {
	s, mock := newSQLMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(insertRe).WillReturnError(errors.New("i/o timeout"))
	mock.ExpectQuery(selectRe).WillReturnError(errors.New("i/o timeout"))
	mock.ExpectExec(deleteRe).WillReturnError(errors.New("i/o timeout"))

	assert.ErrorIs(t, s.Insert(ctx, "alice", nil, "a@x.com", "p@ss1"), common.ErrorTransient)
	_, err := s.Authenticate(ctx, "alice", "p@ss1")
	assert.ErrorIs(t, err, common.ErrorTransient)
	assert.ErrorIs(t, s.Delete(ctx, "alice"), common.ErrorTransient)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CancelledInsertSkipsHashingAndQueries(t *testing.T) {
	s, mock := newSQLMockStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Insert(ctx, "alice", nil, "a@x.com", "p@ss1")
	assert.ErrorIs(t, err, common.ErrorTransient)
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_ValidationIssuesNoQueries(t *testing.T) {
	s, mock := newSQLMockStore(t)

	assert.ErrorIs(t, s.Insert(context.Background(), "alice", nil, "a@x.com", ""), common.ErrorValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}
