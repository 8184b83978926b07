// Package errors provides custom error types for the watch system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the library.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the watch system
var (
	// ErrSourceInvalid indicates that a source cannot be observed with
	// the given selector
	ErrSourceInvalid = errors.New("source invalid")

	// ErrTornDown indicates an operation on an observer that has been
	// permanently torn down
	ErrTornDown = errors.New("torn down")

	// ErrDoubleRegistration indicates a second live registration was
	// about to be created for the same observer
	ErrDoubleRegistration = errors.New("double registration")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrClosed indicates an operation on a closed source
	ErrClosed = errors.New("closed")
)

// SourceInvalidError reports that a selector cannot be satisfied by a
// source, detected at registration time
type SourceInvalidError struct {
	Source   string // description of the source, e.g. "property object"
	Selector string // the key or event name that failed
	Message  string
	Err      error
}

// Error implements the error interface
func (e *SourceInvalidError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("cannot observe %q on %s: %s", e.Selector, e.Source, e.Message)
	}
	return fmt.Sprintf("cannot observe %s: %s", e.Source, e.Message)
}

// Is implements errors.Is support
func (e *SourceInvalidError) Is(target error) bool {
	return target == ErrSourceInvalid
}

// Unwrap implements errors.Unwrap
func (e *SourceInvalidError) Unwrap() error {
	return e.Err
}

// NewSourceInvalidError creates a new SourceInvalidError
func NewSourceInvalidError(source, selector, message string) *SourceInvalidError {
	return &SourceInvalidError{Source: source, Selector: selector, Message: message}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "yaml", "json", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// ConfigError represents a configuration problem in a manifest or option
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("config error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// IsSourceInvalid checks if an error indicates an unobservable source
func IsSourceInvalid(err error) bool {
	return errors.Is(err, ErrSourceInvalid)
}

// IsTornDown checks if an error indicates a torn-down observer
func IsTornDown(err error) bool {
	return errors.Is(err, ErrTornDown)
}

// IsNotFound checks if an error indicates a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error indicates a duplicate resource
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error indicates invalid input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsClosed checks if an error indicates a closed source
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// WrapResource wraps an error with resource operation context
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if id != "" {
		return fmt.Errorf("failed to %s %s %s: %w", operation, resource, id, err)
	}
	return fmt.Errorf("failed to %s %s: %w", operation, resource, err)
}

// WrapParse wraps a parse error with format and file context
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}
