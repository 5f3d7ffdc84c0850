// Package validation checks input records before they reach the backend and
// reports problems field by field.
package validation

import (
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError describes one rejected field of a record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationError is returned before any network call when required input
// is missing or malformed. Subject names the kind of record.
type ValidationError struct {
	Subject string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid " + e.Subject + ": " + strings.Join(msgs, "; ")
}

// Field reports a single rejected field.
func Field(subject, field, tag, message string) *ValidationError {
	return &ValidationError{
		Subject: subject,
		Fields:  []FieldError{{Field: field, Message: message, Type: tag}},
	}
}

// Validator checks struct tags and reports errors by their JSON name.
// It is safe for concurrent use.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator with English messages.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	eng := en.New()
	uni := ut.New(eng, eng)
	trans, found := uni.GetTranslator("en")
	if !found {
		log.Fatal("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		log.Fatal(err)
	}

	return &Validator{validate: v, translator: trans}
}

// Struct validates the tagged fields of s.
func (v *Validator) Struct(subject string, s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate %s: %w", subject, err)
	}

	out := &ValidationError{Subject: subject}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: fe.Translate(v.translator),
			Type:    fe.Tag(),
		})
	}
	return out
}
