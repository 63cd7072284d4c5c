// Package validate checks decoded submissions against their struct tags.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/procoachmastery/website/internal/core"
)

// Field error codes.
const (
	CodeRequired        = "required"
	CodeEmail           = "email"
	CodeConsentRequired = "consent_required"
	CodeInvalid         = "invalid"
)

// FieldError names one failing field by its JSON name.
type FieldError struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

// Errors is a list of field failures.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Code)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Fields returns the failing field names in order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.Field)
	}
	return out
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns a shared validator.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New builds a validator that reports JSON field names and understands the
// "accepted" tag (a present, true boolean).
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(field.Name)
		}
		return name
	})
	_ = v.RegisterValidation("accepted", isAccepted)
	return &Validator{v: v}
}

// Contact normalizes and validates a contact submission.
func (v *Validator) Contact(c *core.ContactSubmission) error {
	if c == nil {
		return Errors{{Field: "body", Code: CodeRequired}}
	}
	c.Normalize()
	return v.check(c)
}

// Waitlist normalizes and validates a waitlist submission.
func (v *Validator) Waitlist(w *core.WaitlistSubmission) error {
	if w == nil {
		return Errors{{Field: "body", Code: CodeRequired}}
	}
	w.Normalize()
	return v.check(w)
}

func (v *Validator) check(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Field: "body", Code: CodeInvalid}}
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Code: codeFor(fe)})
	}
	return out
}

func codeFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return CodeEmail
	case "accepted":
		return CodeConsentRequired
	case "required":
		if fe.Field() == "consent" {
			return CodeConsentRequired
		}
		return CodeRequired
	default:
		return CodeInvalid
	}
}

func isAccepted(fl validator.FieldLevel) bool {
	field := fl.Field()
	for field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return false
		}
		field = field.Elem()
	}
	return field.Kind() == reflect.Bool && field.Bool()
}
