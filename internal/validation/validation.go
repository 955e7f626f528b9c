// Package validation checks request payloads against their `validate` struct
// tags and reports failures as an apperror validation error keyed by the
// payload's JSON field names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/conduit/internal/apperror"
)

// Custom tags registered by New.
const (
	TagUsername = "username"
	TagTrimmed  = "trimmed"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validator wraps the go-playground validator with the API's custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator. It is safe for concurrent use.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names ("tagList") instead of Go names ("TagList").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Usernames appear in URL paths, so they are limited to a safe alphabet.
	_ = v.RegisterValidation(TagUsername, func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	// trimmed rejects values with leading or trailing whitespace.
	_ = v.RegisterValidation(TagTrimmed, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == strings.TrimSpace(s)
	})

	return &Validator{validate: v}
}

// Struct validates s. A failure is returned as an *apperror.AppError wrapping
// apperror.ErrValidation with one message per offending field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe)
		if _, seen := fields[name]; !seen {
			fields[name] = message(name, fe)
		}
	}
	return apperror.Invalid(fields)
}

// fieldName strips the top-level struct name from the namespace, so a nested
// failure reads "tagList[1]" rather than "ArticleInput.tagList[1]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s can't be blank", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "excludes":
		return fmt.Sprintf("%s must not contain %q", field, fe.Param())
	case TagUsername:
		return fmt.Sprintf("%s may only contain letters, digits, dots, hyphens and underscores", field)
	case TagTrimmed:
		return fmt.Sprintf("%s must not start or end with whitespace", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
