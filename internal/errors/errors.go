package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for type checking
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStore        = errors.New("store failure")
	ErrConfig       = errors.New("invalid config")
)

// NotFoundError indicates a resource doesn't exist.
type NotFoundError struct {
	Resource string // "fort"
	ID       string // The identifier that wasn't found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError indicates invalid user input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ValidationErrors collects every failing field of a form submission so the
// whole form can be annotated at once.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) Unwrap() error {
	return ErrInvalidInput
}

// ByField returns the first message recorded for each field.
func (e ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(e))
	for _, v := range e {
		if _, ok := out[v.Field]; !ok {
			out[v.Field] = v.Message
		}
	}
	return out
}

// StoreError wraps a failure reported by the record store.
type StoreError struct {
	Op  string // "list", "insert", "delete", ...
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

// ConfigError indicates a problem with the config file.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Message)
	}
	return "config: " + e.Message
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// Helper constructors for common cases

func FortNotFound(id string) error {
	return &NotFoundError{Resource: "fort", ID: id}
}

func InvalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func StoreFailed(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStoreError checks if an error came from the record store.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}
