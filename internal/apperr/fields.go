package apperr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// JSONTagName makes validator report fields by their json names.
func JSONTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// FromValidator turns validator errors into a validation *Error keyed by the
// field path below the validated struct, e.g. "participants[0].name". Other
// errors (malformed JSON and the like) are reported under "body".
func FromValidator(err error) *Error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Validation(map[string]string{"body": "the request body is not valid"})
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		if _, seen := fields[key]; !seen {
			fields[key] = fieldMessage(fe)
		}
	}
	return Validation(fields)
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.LastIndex(name, "["); i > 0 {
		name = name[:i]
	}
	countable := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array || fe.Kind() == reflect.Map
	text := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		if countable {
			return fmt.Sprintf("add at least one %s", singular(name))
		}
		return fmt.Sprintf("%s is required", name)
	case "min":
		switch {
		case countable:
			return fmt.Sprintf("add at least %s %s", fe.Param(), name)
		case text:
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be %s or more", name, fe.Param())
	case "max":
		switch {
		case countable:
			return fmt.Sprintf("at most %s %s can be added", fe.Param(), name)
		case text:
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be %s or less", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s entries", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "enter a valid email address"
	case "eqfield":
		return "passwords do not match"
	case "datetime":
		return fmt.Sprintf("%s must match %s", name, fe.Param())
	}
	return fmt.Sprintf("%s is not valid", name)
}

func singular(s string) string {
	return strings.TrimSuffix(s, "s")
}
