package function

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Bind decodes loosely-typed parameters into T and runs its validate tags.
// Any mismatch is reported as a validation error.
func Bind[T any](params map[string]any) (T, error) {
	var out T
	if params == nil {
		params = map[string]any{}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return out, ValidationError("parameters are not valid JSON", nil)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, ValidationError("parameter "+typeErr.Field+" must be a "+typeErr.Type.String(), map[string]any{
				"field": typeErr.Field,
			})
		}
		return out, ValidationError("parameters could not be decoded", nil)
	}

	if err := validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return out, fieldValidationError(fieldErrs)
		}
		return out, ValidationError(err.Error(), nil)
	}
	return out, nil
}

func fieldValidationError(errs validator.ValidationErrors) *Error {
	fields := make(map[string]any, len(errs))
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		name := fe.Field()
		fields[name] = fe.Tag()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, "parameter "+name+" is required")
		default:
			msgs = append(msgs, "parameter "+name+" failed "+fe.Tag()+" "+fe.Param())
		}
	}
	return ValidationError(strings.Join(msgs, "; "), map[string]any{"fields": fields})
}
