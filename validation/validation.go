package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/andrewpaige1/flashcards-api/apierr"
)

const failedMessage = "One or more validation errors occurred."

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// Report fields by their JSON names so details match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
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

// Struct validates s and returns an *apierr.Error with per-field details,
// or nil when s is valid.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return apierr.Internal(fmt.Errorf("validate %T: %w", s, err))
	}
	details := make(map[string][]string, len(errs))
	for _, fe := range errs {
		key := fieldPath(fe.Namespace())
		details[key] = append(details[key], message(fe))
	}
	return apierr.Validation(failedMessage, details)
}

// Field builds a single-field validation error for checks done outside
// struct tags.
func Field(field, msg string) error {
	return apierr.Validation(failedMessage, map[string][]string{field: {msg}})
}

// fieldPath drops the top-level struct name: "CreateDeckInput.cards[0].term"
// becomes "cards[0].term".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s).", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation.", field, fe.Tag())
	}
}
