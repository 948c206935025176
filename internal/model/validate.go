package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate normalizes in and checks it against its struct tags.
func Validate(in Input) (Input, error) {
	in = in.Normalize()
	if err := validate.Struct(in); err != nil {
		return in, err
	}
	return in, nil
}

// ValidationMessages converts validator errors into user-facing messages keyed
// by lower-cased field name. Other errors produce an empty map.
func ValidationMessages(err error) map[string]string {
	msgs := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgs
	}
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs[field] = fmt.Sprintf("%s is required", field)
		case "max":
			msgs[field] = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		default:
			msgs[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return msgs
}

// ValidationSummary joins ValidationMessages into a single line, falling back
// to err's own text.
func ValidationSummary(err error) string {
	msgs := ValidationMessages(err)
	if len(msgs) == 0 {
		return err.Error()
	}
	keys := make([]string, 0, len(msgs))
	for k := range msgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, msgs[k])
	}
	return strings.Join(parts, "; ")
}
