package cli

import (
	"errors"

	"github.com/dmitrijs2005/credstore/internal/common"
	"github.com/dmitrijs2005/credstore/internal/server/config"
)

var (
	ErrUsage                = errors.New("usage error")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Exit codes returned by ExitCode.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitNotFound  = 3
	ExitDuplicate = 4
	ExitInvalid   = 5
	ExitTransient = 75
	ExitConfig    = 78
)

// ExitCode maps an error returned by NewApp or Run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, common.ErrorNotFound):
		return ExitNotFound
	case errors.Is(err, common.ErrorDuplicateEntry):
		return ExitDuplicate
	case errors.Is(err, common.ErrorValidation):
		return ExitInvalid
	case errors.Is(err, common.ErrorTransient):
		return ExitTransient
	case errors.Is(err, config.ErrMissingSecret), errors.Is(err, config.ErrInvalidConfig):
		return ExitConfig
	default:
		return ExitFailure
	}
}
