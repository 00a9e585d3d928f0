// Package validation validates domain entities with go-playground/validator.
//
// A single validator instance is shared by the whole process: it caches
// struct metadata and is safe for concurrent use. Field failures are reported
// under the entity's JSON property names so they can be returned to clients
// as-is.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// slugPattern matches lowercase words separated by single hyphens; case is
// ignored.
var slugPattern = regexp.MustCompile(`(?i)^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validator returns the process-wide validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		// Registration only fails for an empty tag or a nil func.
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Check validates s and records each failing field in verr. The returned
// error is non-nil only when s cannot be validated at all (e.g. it is not a
// struct), which is a programming error.
func Check(verr *domain.ValidationError, s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation.Check: %w", err)
	}
	for _, fe := range fieldErrs {
		path := fieldPath(fe)
		kind, message := describe(path, fe)
		verr.Add(path, kind, message, fe.Value())
	}
	return nil
}

// fieldPath drops the struct name from the namespace:
// "Place.location.longitude" becomes "location.longitude".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func describe(path string, fe validator.FieldError) (kind, message string) {
	switch fe.Tag() {
	case "required":
		return "required", fmt.Sprintf("Path `%s` is required.", path)
	case "min":
		return "minlength", fmt.Sprintf("Path `%s` (`%v`) is shorter than the minimum allowed length (%s).", path, fe.Value(), fe.Param())
	case "max":
		return "maxlength", fmt.Sprintf("Path `%s` (`%v`) is longer than the maximum allowed length (%s).", path, fe.Value(), fe.Param())
	case "gte":
		return "min", fmt.Sprintf("Path `%s` (%v) is less than minimum allowed value (%s).", path, fe.Value(), fe.Param())
	case "lte":
		return "max", fmt.Sprintf("Path `%s` (%v) is more than maximum allowed value (%s).", path, fe.Value(), fe.Param())
	case "slug":
		return "regexp", fmt.Sprintf("Path `%s` is invalid (%v).", path, fe.Value())
	default:
		return fe.Tag(), fmt.Sprintf("Path `%s` is invalid (%v).", path, fe.Value())
	}
}
