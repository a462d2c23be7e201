package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ZeMendes2393/sailscore/apperr"
)

// Validator adapts validator/v10 to echo.Validator.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator using struct tags.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate checks i and reports failing fields as an InvalidRequest error.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation(apperr.CodeInvalidRequest, "%s", err.Error())
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Namespace()+" "+fe.Tag())
	}
	return apperr.Validation(apperr.CodeInvalidRequest, "invalid fields: %s", strings.Join(fields, ", ")).
		With("fields", fields)
}
