// Package val validates value objects against their declarative `validate`
// struct tags using go-playground/validator.
package val

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
	"github.com/rise-and-shine/crud/cruderr"
)

var validate = newValidator() //nolint:gochecknoglobals // single shared validator, tag caches are expensive to rebuild

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
}

// ValidateVO checks the value object against its validate tags. On failure it
// returns a VALIDATION_FAILED error whose fields map holds one entry per
// invalid field, keyed by the field's wire name.
func ValidateVO(vo any) error {
	err := validate.Struct(vo)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errx.New(
			fmt.Sprintf("unexpected validation error: %s", err.Error()),
			errx.WithCode(cruderr.CodeValidationFailed),
			errx.WithType(errx.T_Validation),
		)
	}

	fields := make(errx.M, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}

	return errx.New(
		"validation failed",
		errx.WithCode(cruderr.CodeValidationFailed),
		errx.WithType(errx.T_Validation),
		errx.WithFields(fields),
	)
}

// fieldName resolves a struct field's wire name from its json, query or
// params tag, in that order, falling back to the Go field name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "params"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

// describe renders a constraint failure as a phrase that reads naturally
// after the field name ("the field <name> <phrase>").
func describe(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must be a valid number"
	case "alpha":
		return "must contain only alphabetic characters"
	case "alphanum":
		return "must contain only alphanumeric characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		return fmt.Sprintf("must be at most %s", param)
	case "len":
		return fmt.Sprintf("must have exactly %s elements", param)
	case "gt":
		return fmt.Sprintf("must be greater than %s", param)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "lt":
		return fmt.Sprintf("must be less than %s", param)
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", param)
	case "datetime":
		return fmt.Sprintf("must be a valid datetime in format %s", param)
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
