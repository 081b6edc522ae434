// Package services contains the credential store's business logic:
// UserStore implements lookup, authentication and the race-safe
// create/edit/delete operations on user records.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credstore/internal/common"
	"github.com/dmitrijs2005/credstore/internal/cryptox"
	"github.com/dmitrijs2005/credstore/internal/dbx"
	"github.com/dmitrijs2005/credstore/internal/logging"
	"github.com/dmitrijs2005/credstore/internal/server/models"
	"github.com/dmitrijs2005/credstore/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UserStore is the sole writer of the users table. It keeps no state of its
// own besides the injected pool: uniqueness and partial updates rest on
// single-statement conditional writes and their affected-row counts.
type UserStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.PasswordHasher
	validate    *validator.Validate
	logger      logging.Logger
}

// NewUserStore constructs a UserStore over a pool opened by dbx.Open.
func NewUserStore(db *sql.DB, m repomanager.RepositoryManager, h *cryptox.PasswordHasher, logger logging.Logger) *UserStore {
	return &UserStore{
		db:          db,
		repomanager: m,
		hasher:      h,
		validate:    newValidator(),
		logger:      logger,
	}
}

// GetByUsername returns the record keyed by username or common.ErrorNotFound.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.UserRecord, error) {
	if err := s.validateField("username", username, usernameRules); err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).GetByUsername(ctx, username)
}

// Authenticate reports whether password matches the stored hash. A wrong
// password is (false, nil); only an unknown username is an error.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (bool, error) {
	log := s.opLogger("authenticate", username)

	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		s.logFailure(ctx, log, "authentication lookup failed", err)
		return false, err
	}

	if err := ctx.Err(); err != nil {
		return false, common.Transient("authenticate", err)
	}

	ok := s.hasher.Verify(password, user.Salt, user.Iterations, user.PasswordHash)
	if !ok {
		log.Warn(ctx, "password mismatch")
	}
	return ok, nil
}

// Insert creates a record with a fresh salt and iteration count. The write
// is a single conditional insert; a taken username yields
// common.ErrorDuplicateEntry.
func (s *UserStore) Insert(ctx context.Context, username string, displayName *string, email, password string) error {
	log := s.opLogger("insert", username)

	in := newUser{Username: username, DisplayName: displayName, Email: email, Password: password}
	if err := s.validateStruct(in); err != nil {
		s.logFailure(ctx, log, "insert rejected", err)
		return err
	}

	creds, err := s.newCredentials(ctx, password)
	if err != nil {
		return err
	}

	user := &models.UserRecord{
		Username:     username,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: creds.Hash,
		Salt:         creds.Salt,
		Iterations:   creds.Iterations,
	}

	n, err := s.repomanager.Users(s.db).InsertIfAbsent(ctx, user)
	if err != nil {
		s.logFailure(ctx, log, "insert failed", err)
		return err
	}
	if n == 0 {
		err = fmt.Errorf("username %q already exists: %w", username, common.ErrorDuplicateEntry)
		s.logFailure(ctx, log, "insert failed", err)
		return err
	}

	log.Info(ctx, "user inserted")
	return nil
}

// Edit applies patch to the record keyed by username. An empty patch returns
// immediately without touching the database. Setting a password draws a new
// salt and iteration count. The fetch and the write share one transaction
// and the write must affect exactly one row: none is common.ErrorNotFound,
// more than one is a *common.IntegrityError.
func (s *UserStore) Edit(ctx context.Context, username string, patch models.UserPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	log := s.opLogger("edit", username)

	if err := s.validatePatch(username, patch); err != nil {
		s.logFailure(ctx, log, "edit rejected", err)
		return err
	}

	// Hashing happens before the transaction so no lock is held during it.
	var creds *cryptox.Credentials
	if patch.Password.Set {
		var err error
		if creds, err = s.newCredentials(ctx, patch.Password.Value); err != nil {
			return err
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		current, err := repo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}

		n, err := repo.Update(ctx, username, merge(current, patch, creds))
		if err != nil {
			return err
		}

		switch {
		case n == 0:
			return fmt.Errorf("user %q: %w", username, common.ErrorNotFound)
		case n > 1:
			return &common.IntegrityError{Username: username, Rows: n}
		}
		return nil
	})
	if err != nil {
		if !isKnown(err) {
			err = common.Transient("edit transaction", err)
		}
		s.logFailure(ctx, log, "edit failed", err)
		return err
	}

	log.Info(ctx, "user edited", "renamed", patch.Username.Set, "password_changed", patch.Password.Set)
	return nil
}

// Delete removes the record keyed by username; a missing record is
// common.ErrorNotFound.
func (s *UserStore) Delete(ctx context.Context, username string) error {
	log := s.opLogger("delete", username)

	if err := s.validateField("username", username, usernameRules); err != nil {
		return err
	}

	n, err := s.repomanager.Users(s.db).Delete(ctx, username)
	if err == nil && n == 0 {
		err = fmt.Errorf("user %q: %w", username, common.ErrorNotFound)
	}
	if err != nil {
		s.logFailure(ctx, log, "delete failed", err)
		return err
	}

	log.Info(ctx, "user deleted")
	return nil
}

// --- helpers below ---

func (s *UserStore) newCredentials(ctx context.Context, password string) (*cryptox.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Transient("hash password", err)
	}
	creds, err := s.hasher.NewCredentials(password)
	if err != nil {
		return nil, common.Transient("hash password", err)
	}
	return creds, nil
}

func (s *UserStore) validatePatch(username string, p models.UserPatch) error {
	if err := s.validateField("username", username, usernameRules); err != nil {
		return err
	}
	if p.Username.Set {
		if err := s.validateField("new username", p.Username.Value, usernameRules); err != nil {
			return err
		}
	}
	if p.DisplayName.Set && p.DisplayName.Value != nil {
		if err := s.validateField("display name", *p.DisplayName.Value, displayNameRules); err != nil {
			return err
		}
	}
	if p.Email.Set {
		if err := s.validateField("email", p.Email.Value, emailRules); err != nil {
			return err
		}
	}
	if p.Password.Set {
		if err := s.validateField("password", p.Password.Value, passwordRules); err != nil {
			return err
		}
	}
	return nil
}

// merge returns current with every set field of p applied.
func merge(current *models.UserRecord, p models.UserPatch, creds *cryptox.Credentials) *models.UserRecord {
	next := current.Clone()
	next.Username = p.Username.Or(current.Username)
	next.DisplayName = p.DisplayName.Or(current.DisplayName)
	next.Email = p.Email.Or(current.Email)
	if creds != nil {
		next.PasswordHash = creds.Hash
		next.Salt = creds.Salt
		next.Iterations = creds.Iterations
	}
	return next
}

func (s *UserStore) opLogger(op, username string) logging.Logger {
	return s.logger.With("op", op, "op_id", uuid.NewString(), "username", username)
}

// logFailure logs expected outcomes at Warn and faults at Error.
func (s *UserStore) logFailure(ctx context.Context, log logging.Logger, msg string, err error) {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorValidation) ||
		(errors.Is(err, common.ErrorDuplicateEntry) && !errors.Is(err, common.ErrorIntegrity)) {
		log.Warn(ctx, msg, "error", err.Error())
		return
	}
	log.Error(ctx, msg, "error", err.Error())
}

func isKnown(err error) bool {
	for _, target := range []error{
		common.ErrorNotFound, common.ErrorDuplicateEntry, common.ErrorValidation, common.ErrorTransient,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
