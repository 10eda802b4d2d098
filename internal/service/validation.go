package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError turns the first failed rule into a readable 400.
func validationError(err error) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	fe := fieldErrs[0]
	label := humanize(fe.Field())

	var msg string
	switch fe.Tag() {
	case "required":
		msg = label + " is required"
	case "email":
		msg = label + " must be a valid email address"
	case "url":
		msg = label + " must be a valid URL"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "gt", "gte", "lt", "lte":
		msg = label + " is out of range"
	default:
		msg = label + " is invalid"
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
}

func humanize(field string) string {
	field = strings.ReplaceAll(field, "_", " ")
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func (v validated) check(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return validationError(err)
	}
	return nil
}

// validated is embedded by services that validate request structs.
type validated struct {
	validate *validator.Validate
}

func newValidated(v *validator.Validate) validated {
	if v == nil {
		v = NewValidator()
	}
	return validated{validate: v}
}
