package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/idelchi/gogen/pkg/validator"
)

// newValidator returns a validator with English messages, the exclusive rule and
// fields named after their flag or environment variable.
func newValidator() (*validator.Validator, error) {
	validate := validator.NewValidator()

	if err := validate.RegisterValidationAndTranslation(
		"exclusive",
		validateExclusive,
		"{0} is mutually exclusive with its file variant",
	); err != nil {
		return nil, fmt.Errorf("registering exclusive validation: %w", err)
	}

	validate.Validator().RegisterTagNameFunc(labelName)

	return validate, nil
}

// labelName names fields after their label tag, or their lowercased field name.
func labelName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("label"), ",")

	switch name {
	case "", "-":
		return strings.ToLower(fld.Name)
	default:
		return name
	}
}

// validateExclusive fails when both the field and the sibling named by the parameter
// hold a non-zero value.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	other := fl.Parent().FieldByName(fl.Param())

	if !field.IsValid() || !other.IsValid() {
		return true
	}

	return field.IsZero() || other.IsZero()
}

// check validates v and reports every failure as one usage error.
func check(validate *validator.Validator, v any) error {
	errs := validate.Validate(v)
	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrUsage, errors.Join(errs...))
}
