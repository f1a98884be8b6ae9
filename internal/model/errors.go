package model

import "fmt"

// ParseErrorKind classifies document-level parse failures.
type ParseErrorKind string

const (
	// InvalidStructure means neither recognized NFe root shape was found.
	InvalidStructure ParseErrorKind = "invalid_structure"

	// MissingRequiredField means a field with no safe zero-default is absent.
	MissingRequiredField ParseErrorKind = "missing_required_field"
)

// ParseError represents a document-level parse failure. It is fatal for the
// document: the caller must reject the whole file, never a partial invoice.
type ParseError struct {
	Kind    ParseErrorKind
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Kind, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(kind ParseErrorKind, field, message string, cause error) *ParseError {
	return &ParseError{
		Kind:    kind,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// LineError represents a failure while classifying or projecting a single
// product line. It is recoverable at line granularity: the assembler skips
// the line and continues with the rest of the batch.
type LineError struct {
	Index   int    `json:"index"`
	Code    string `json:"code,omitempty"`
	NCM     string `json:"ncm,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *LineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("line %d (code=%s): %s (%v)", e.Index, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("line %d (code=%s): %s", e.Index, e.Code, e.Message)
}

func (e *LineError) Unwrap() error {
	return e.Cause
}

// NewLineError creates a new line error
func NewLineError(index int, code, ncm, message string, cause error) *LineError {
	return &LineError{
		Index:   index,
		Code:    code,
		NCM:     ncm,
		Message: message,
		Cause:   cause,
	}
}

// ConfigErrorKind classifies regime configuration failures.
type ConfigErrorKind string

const (
	// ZeroRevenue means a non-positive RBT12 reached the rate formula, which
	// would otherwise divide by zero.
	ZeroRevenue ConfigErrorKind = "zero_revenue"
)

// ConfigError represents an invalid regime configuration value.
type ConfigError struct {
	Kind    ConfigErrorKind
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s (rule=%s)", e.Field, e.Message, e.Kind)
}

// NewConfigError creates a new configuration error
func NewConfigError(kind ConfigErrorKind, field, message string) *ConfigError {
	return &ConfigError{
		Kind:    kind,
		Field:   field,
		Message: message,
	}
}
