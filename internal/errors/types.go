package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
)

// NavError is a structured error type with context.
type NavError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *NavError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *NavError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *NavError) Is(target error) bool {
	var t *NavError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *NavError) WithContext(key string, value interface{}) *NavError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile adds file location information.
func (e *NavError) WithFile(filePath string) *NavError {
	e.FilePath = filePath

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *NavError {
	return &NavError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *NavError {
	return &NavError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// WrapIO wraps a filesystem error for filePath. Missing files get
// ErrCodeFileNotFound, everything else ErrCodeFileRead.
func WrapIO(err error, filePath string) *NavError {
	code := ErrCodeFileRead
	if errors.Is(err, fs.ErrNotExist) {
		code = ErrCodeFileNotFound
	}
	return NewIOError(code, "cannot read file", err).WithFile(filePath)
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *NavError {
	return &NavError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable. A recoverable error is
// recorded against the file it concerns and the run continues; any other
// error aborts the run.
func IsRecoverable(err error) bool {
	var ne *NavError
	if errors.As(err, &ne) {
		return ne.Recoverable
	}

	return false
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool {
	var ne *NavError
	if errors.As(err, &ne) {
		return ne.Type == ErrorTypeConfig
	}

	return false
}

// Common error codes.
const (
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeFileRead         = "ERR_FILE_READ"
	ErrCodeInvalidEncoding  = "ERR_INVALID_ENCODING"
	ErrCodeInvalidMarkup    = "ERR_INVALID_MARKUP"
	ErrCodeInvalidSelector  = "ERR_INVALID_SELECTOR"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// FieldValidationError describes a single invalid configuration field.
type FieldValidationError struct {
	FieldName    string
	FieldValue   interface{}
	ErrorMessage string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fve.FieldName, fve.ErrorMessage)
}

// ValidationErrorCollection represents a collection of validation errors.
type ValidationErrorCollection struct {
	Errors []*FieldValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 0 {
		return "no validation errors"
	}
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	msgs := make([]string, 0, len(vec.Errors))
	for _, err := range vec.Errors {
		msgs = append(msgs, err.Error())
	}

	return fmt.Sprintf("validation failed with %d errors: %s", len(vec.Errors), strings.Join(msgs, "; "))
}

// AddField adds a field validation error to the collection.
func (vec *ValidationErrorCollection) AddField(field string, value interface{}, message string) {
	vec.Errors = append(vec.Errors, &FieldValidationError{
		FieldName:    field,
		FieldValue:   value,
		ErrorMessage: message,
	})
}

// HasErrors returns true if there are any validation errors.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ErrOrNil returns the collection as an error, or nil when it is empty.
func (vec *ValidationErrorCollection) ErrOrNil() error {
	if !vec.HasErrors() {
		return nil
	}

	return vec
}
