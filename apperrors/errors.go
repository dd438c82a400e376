// Package apperrors holds the typed errors services return. Handlers translate
// them into HTTP responses; nothing here knows about HTTP.
package apperrors

import "fmt"

// Cause is a field-level validation message
type Cause struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Causes  []Cause
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(message string, causes ...Cause) *ValidationError {
	return &ValidationError{Message: message, Causes: causes}
}

// Field is shorthand for a validation error on a single field
func Field(field, message string) *ValidationError {
	return &ValidationError{Message: message, Causes: []Cause{{Field: field, Message: message}}}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// LimitExceededError is returned when a tenant's plan does not allow another row.
type LimitExceededError struct {
	Resource string
	Current  int64
	Max      int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit reached for this plan (%d/%d)", e.Resource, e.Current, e.Max)
}

// ConflictError covers duplicates and deletions blocked by dependent rows.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// HasDependents is the conflict returned by delete guards
func HasDependents(resource, dependents string, count int64) *ConflictError {
	return Conflict("%s has %d dependent %s and cannot be deleted", resource, count, dependents)
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func Forbidden(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

func Unauthorized(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}
