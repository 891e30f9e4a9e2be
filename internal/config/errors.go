package config

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error produced by this package wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	// ErrDefinition reports a malformed schema. It is a programming error.
	ErrDefinition = errors.New("invalid config definition")
	// ErrUnknownField reports a value for a field a closed schema does not declare.
	ErrUnknownField = errors.New("unknown config field")
	// ErrDuplicateField reports a runtime registration of an existing name.
	ErrDuplicateField = errors.New("duplicate config field")
	// ErrRequiredField reports a required field left unset after resolution.
	ErrRequiredField = errors.New("required config field is not set")
	// ErrInvalid reports values that are inconsistent or of the wrong type.
	ErrInvalid = errors.New("invalid config")
	// ErrParse reports configuration source text that could not be parsed.
	ErrParse = errors.New("config parse failed")
)

// FieldError carries the schema, field and offending value of a failure.
type FieldError struct {
	Schema string
	Field  string
	Value  any
	Msg    string
	Err    error
}

func (e *FieldError) Error() string {
	prefix := e.Field
	if e.Schema != "" {
		prefix = e.Schema + "." + e.Field
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Invalidf builds an ErrInvalid FieldError. Validators use it to name the
// offending field and value.
func Invalidf(schema, field string, value any, format string, args ...any) error {
	return &FieldError{
		Schema: schema,
		Field:  field,
		Value:  value,
		Msg:    fmt.Sprintf(format, args...),
		Err:    ErrInvalid,
	}
}

// ParseError wraps a failure to parse configuration source text.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s config %s: %v", e.Format, e.Path, e.Err)
}

// Unwrap exposes both ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

func definitionErr(schema, format string, args ...any) error {
	return fmt.Errorf("%w: schema %q: %s", ErrDefinition, schema, fmt.Sprintf(format, args...))
}
