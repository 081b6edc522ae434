package services

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/credstore/internal/common"
	"github.com/go-playground/validator/v10"
)

const (
	usernameRules    = "required,max=255"
	displayNameRules = "max=255"
	emailRules       = "required,max=320"
	passwordRules    = "required,max=1024"
)

// newUser is the validated input of Insert.
type newUser struct {
	Username    string  `validate:"required,max=255"`
	DisplayName *string `validate:"omitempty,max=255"`
	Email       string  `validate:"required,max=320"`
	Password    string  `validate:"required,max=1024"`
}

func newValidator() *validator.Validate {
	return validator.New()
}

func (s *UserStore) validateStruct(v any) error {
	return validationError("", s.validate.Struct(v))
}

func (s *UserStore) validateField(field string, value any, rules string) error {
	return validationError(field, s.validate.Var(value, rules))
}

// validationError turns validator output into common.ErrorValidation.
// Values are never echoed since one of them may be a password.
func validationError(field string, err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.Validation("%v", err)
	}

	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if name == "" {
			name = field
		}
		reasons = append(reasons, strings.ToLower(name)+" failed "+fe.Tag())
	}
	return common.Validation("%s", strings.Join(reasons, ", "))
}
