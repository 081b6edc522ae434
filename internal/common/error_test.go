package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegrityError_MatchesDuplicateAndIntegrity(t *testing.T) {
	var err error = &IntegrityError{Username: "alice", Rows: 2}
	wrapped := fmt.Errorf("edit alice: %w", err)

	assert.ErrorIs(t, wrapped, ErrorIntegrity)
	assert.ErrorIs(t, wrapped, ErrorDuplicateEntry)
	assert.NotErrorIs(t, wrapped, ErrorNotFound)
	assert.Contains(t, err.Error(), `updated 2 rows for username "alice"`)

	var ie *IntegrityError
	assert.True(t, errors.As(wrapped, &ie))
	assert.EqualValues(t, 2, ie.Rows)
}

func TestTransient_KeepsDriverError(t *testing.T) {
	driverErr := errors.New("connection refused")
	err := Transient("select user", driverErr)

	assert.ErrorIs(t, err, ErrorTransient)
	assert.ErrorIs(t, err, driverErr)
	assert.Equal(t, "transient storage error: select user: connection refused", err.Error())
}

func TestValidation(t *testing.T) {
	err := Validation("field %s is required", "email")

	assert.ErrorIs(t, err, ErrorValidation)
	assert.Equal(t, "validation error: field email is required", err.Error())
}
