// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidDate     = errors.New("invalid calendar date")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrAborted      = errors.New("operation aborted")

	// Storage errors
	ErrStorage = errors.New("storage error")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "record", "roster", "synthesis"
	Op      string // Operation that failed, e.g., "Save", "Generate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Record domain errors
var (
	ErrRecordNotFound      = NewDomainError("record", "Find", ErrNotFound, "daily record not found")
	ErrInvalidRecordID     = NewDomainError("record", "Validate", ErrInvalidID, "invalid record ID")
	ErrInvalidRecordDate   = NewDomainError("record", "Validate", ErrInvalidDate, "record date is not a valid calendar date")
	ErrUnknownSubject      = NewDomainError("record", "Validate", ErrInvalidInput, "unknown subject")
	ErrUnknownAttendance   = NewDomainError("record", "Validate", ErrInvalidInput, "unknown attendance status")
	ErrScoreOutOfRange     = NewDomainError("record", "Validate", ErrValueOutOfRange, "scale score must be between 1 and 4")
	ErrNegativeCount       = NewDomainError("record", "Validate", ErrNegativeValue, "question count cannot be negative")
	ErrScoreCountMismatch  = NewDomainError("record", "Validate", ErrInvalidEntity, "score entries do not match roster size")
	ErrUnknownScoreField   = NewDomainError("record", "Update", ErrInvalidInput, "unknown score field")
)

// Roster domain errors
var (
	ErrClassNotFound      = NewDomainError("roster", "Find", ErrNotFound, "class not found")
	ErrClassAlreadyExists = NewDomainError("roster", "Register", ErrAlreadyExists, "class already registered")
	ErrEmptyRoster        = NewDomainError("roster", "Validate", ErrEmptyValue, "roster has no students")
	ErrInvalidClassName   = NewDomainError("roster", "Validate", ErrInvalidInput, "class name cannot be empty")
)

// Synthesis domain errors
var (
	ErrSynthesisAborted    = NewDomainError("synthesis", "Generate", ErrAborted, "bulk generation aborted after storage failure")
	ErrInvalidDocsPerClass = NewDomainError("synthesis", "Validate", ErrValueOutOfRange, "documents per class must be between 1 and 4")
	ErrNoClassesSelected   = NewDomainError("synthesis", "Validate", ErrEmptyValue, "no classes selected")
)

// External service errors
var (
	ErrNarrativeUnavailable     = NewDomainError("narrative", "Request", ErrServiceUnavailable, "narrative service is unavailable")
	ErrNarrativeRateLimited     = NewDomainError("narrative", "Request", ErrRateLimited, "narrative service rate limit exceeded")
	ErrNarrativeTimeout         = NewDomainError("narrative", "Request", ErrTimeout, "narrative service request timeout")
	ErrNarrativeInvalidResponse = NewDomainError("narrative", "Parse", ErrInvalidFormat, "invalid response from narrative service")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidDate)
}

// IsStorage checks if the error came from the persistence gateway.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
