// Package validate checks request input structs and turns failures into
// apperror field lists.
//
// Rules live on the input types as go-playground/validator tags. Two extra
// conventions apply:
//
//   - the json tag names the field in error output ("fieldofstudy", not "FieldOfStudy")
//   - a `msg` tag overrides the generic message ("Status is required")
//
// model.Optional[string] fields are validated on their Value, so `required`
// rejects both an absent field and a supplied empty string.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()

	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	val.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if o, ok := f.Interface().(model.Optional[string]); ok {
			return o.Value
		}
		return nil
	}, model.Optional[string]{})

	return val
}

// Struct validates s (a struct or pointer to struct). It returns nil, an
// *apperror.AppError wrapping apperror.ErrValidation, or a plain error if s
// cannot be validated at all.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	t := reflect.Indirect(reflect.ValueOf(s)).Type()
	out := make([]apperror.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := defaultMessage(fe)
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if m := sf.Tag.Get("msg"); m != "" {
				msg = m
			}
		}
		out = append(out, apperror.FieldError{
			Value:    fe.Value(),
			Msg:      msg,
			Param:    fe.Field(),
			Location: "body",
		})
	}

	return apperror.Invalid(out)
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please include a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
