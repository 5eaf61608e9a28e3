// Package validation wraps go-playground/validator with the rules shared by
// the content services: a singleton validator that reports fields by their
// JSON names, plus custom tags for YouTube links, storage identifiers and
// non-blank text.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-church-backend/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Error is returned by Struct when one or more fields fail validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "youtube_url", func(fl validator.FieldLevel) bool {
			_, ok := domain.ExtractYouTubeID(fl.Field().String())
			return ok
		})
		mustRegister(v, "storageid", func(fl validator.FieldLevel) bool {
			return domain.IsStorageID(fl.Field().String())
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Struct validates s and returns *Error when a rule fails.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}
	out := &Error{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		out.Fields[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: translate(fe)}
	}
	return out
}

var messages = map[string]string{
	"required":    "%s is required",
	"notblank":    "%s is required",
	"email":       "%s must be a valid email address",
	"youtube_url": "Invalid YouTube URL",
	"storageid":   "%s is not a valid id",
}

var messagesWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gtefield": "%s must not be before %s",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if t, ok := messages[tag]; ok {
		if strings.Contains(t, "%s") {
			return fmt.Sprintf(t, field)
		}
		return t
	}
	if t, ok := messagesWithParam[tag]; ok {
		return fmt.Sprintf(t, field, lowerFirst(param))
	}
	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s cannot exceed %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}

// lowerFirst maps a Go field name used as a cross-field param ("StartDate")
// to its JSON spelling ("startDate").
func lowerFirst(s string) string {
	if s == "" || strings.Contains(s, " ") {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
