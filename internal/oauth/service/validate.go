package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report the wire name so messages read "first-name is required".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest checks v against its struct tags and returns the first
// failure as a validation error.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return errx.Unexpected(err)
	}

	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return errx.Validationf("%s is required", fe.Field())
	case "email":
		return errx.Validationf("%s must be a valid email address", fe.Field())
	case "eq":
		return errx.Validationf("%s must be %q", fe.Field(), fe.Param())
	default:
		return errx.Validationf("%s is invalid", fe.Field())
	}
}
