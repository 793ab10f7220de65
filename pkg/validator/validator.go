package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/admin-console/pkg/errors"
)

// Validator checks form payloads before they are sent to the backend.
type Validator interface {
	// Struct validates every `validate` tag on v and returns the first failure.
	Struct(v interface{}) error
	// Required checks that the named json fields of v are non-zero.
	Required(v interface{}, fields ...string) error
}

type validator struct {
	v *playground.Validate
}

func New() Validator {
	v := playground.New()
	v.RegisterTagNameFunc(jsonName)
	return &validator{v: v}
}

func (val *validator) Struct(v interface{}) error {
	err := val.v.Struct(v)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		return fieldError(verrs[0])
	}
	return errors.NewValidation("", err.Error())
}

func (val *validator) Required(v interface{}, fields ...string) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return errors.NewValidation("", "form must be a struct")
	}

	for _, name := range fields {
		field, ok := fieldByJSONName(rv, name)
		if !ok {
			return errors.NewValidation(name, fmt.Sprintf("unknown field %s", name))
		}
		if err := val.v.Var(field.Interface(), "required"); err != nil {
			return errors.NewValidation(name, fmt.Sprintf("%s is required", name))
		}
	}
	return nil
}

func fieldError(fe playground.FieldError) *errors.AppError {
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "email":
		msg = fmt.Sprintf("%s must be a valid email", field)
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "eqfield":
		msg = fmt.Sprintf("%s must match %s", field, lowerFirst(fe.Param()))
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		msg = fmt.Sprintf("%s must be a valid URL", field)
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return errors.NewValidation(field, msg)
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return lowerFirst(fld.Name)
	}
	return name
}

func fieldByJSONName(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonName(rt.Field(i)) == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
