// Package validation validates request bodies with validator/v10 and turns
// failures into apperr validation errors carrying per-field messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/patch"
)

// TagName is the struct tag holding rules, shared with gin's binding.
const TagName = "binding"

// Validator wraps go-playground/validator. It satisfies gin's
// binding.StructValidator so c.ShouldBindJSON runs it.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports JSON field names and understands the
// patch field types.
func New() *Validator {
	v := validator.New()
	v.SetTagName(TagName)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		}
		return name
	})

	val := &Validator{v: v}
	val.RegisterValuers(
		patch.Field[string]{},
		patch.Field[int]{},
		patch.Field[uint]{},
		patch.Field[bool]{},
		patch.Nullable[string]{},
		patch.Nullable[int]{},
	)
	return val
}

// absent stands in for patch fields that were not supplied (or were null).
// Rules starting with "omitnil" skip it, while supplied values, even empty
// strings, are still checked:
//
//	Name patch.Field[string] `json:"name" binding:"omitnil,min=1,max=50"`
var absent = (*struct{})(nil)

// RegisterValuers makes the validator see the ValidationValue of each given
// patch.Valuer type instead of the wrapper struct.
func (v *Validator) RegisterValuers(types ...patch.Valuer) {
	samples := make([]any, len(types))
	for i, t := range types {
		samples[i] = t
	}
	v.v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		valuer, ok := field.Interface().(patch.Valuer)
		if !ok {
			return absent
		}
		if value := valuer.ValidationValue(); value != nil {
			return value
		}
		return absent
	}, samples...)
}

// RegisterCustomTypeFunc exposes the underlying registration for types that
// are not patch fields.
func (v *Validator) RegisterCustomTypeFunc(fn validator.CustomTypeFunc, types ...any) {
	v.v.RegisterCustomTypeFunc(fn, types...)
}

// Validate validates a struct and returns an *apperr.Error on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return FormatError(err)
	}
	return nil
}

// ValidateStruct implements gin's binding.StructValidator.
func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Struct:
		return v.v.Struct(value.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Engine implements gin's binding.StructValidator.
func (v *Validator) Engine() any {
	return v.v
}

// FormatError converts decoding and validation failures into a validation
// apperr. Other errors are returned unchanged.
func FormatError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fieldErrors := make(map[string]string, len(validationErrs))
		for _, e := range validationErrs {
			fieldErrors[fieldPath(e)] = friendlyMessage(e)
		}
		return apperr.ValidationWithDetails("validation failed", fieldErrors)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperr.ValidationWithDetails("validation failed", map[string]string{
			field: "must be of type " + typeErr.Type.String(),
		})
	}

	var syntaxErr *json.SyntaxError
	var parseErr *time.ParseError
	switch {
	case errors.As(err, &syntaxErr):
		return apperr.Validation("Malformed JSON body")
	case errors.Is(err, patch.ErrNull):
		return apperr.Validation("Field may not be null")
	case errors.As(err, &parseErr):
		return apperr.Validation("Dates must use the YYYY-MM-DD format")
	case err.Error() == "EOF":
		return apperr.Validation("Request body is required")
	}
	return apperr.Validation(err.Error())
}

// fieldPath drops the root struct name: "OrderCreate.books[0].quantity"
// becomes "books[0].quantity".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return sizeMessage(e, "at least")
	case "max":
		return sizeMessage(e, "at most")
	case "len":
		return sizeMessage(e, "exactly")
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "unique":
		return "must not contain duplicates"
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "is invalid"
	}
}

func sizeMessage(e validator.FieldError, bound string) string {
	switch e.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", bound, e.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain %s %s items", bound, e.Param())
	default:
		return fmt.Sprintf("must be %s %s", bound, e.Param())
	}
}
