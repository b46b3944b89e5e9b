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
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "syllabus", "chat", "summary"
	Op      string // Operation that failed, e.g., "Reconcile", "Append"
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

// Syllabus domain errors
var (
	ErrSyllabusNotFound      = NewDomainError("syllabus", "Find", ErrNotFound, "syllabus not found for student and course")
	ErrTopicNotInSyllabus    = NewDomainError("syllabus", "SetStatus", ErrNotFound, "topic not present in syllabus")
	ErrInvalidTopicStatus    = NewDomainError("syllabus", "Validate", ErrInvalidInput, "invalid topic status")
	ErrInvalidStatusChange   = NewDomainError("syllabus", "SetStatus", ErrStateTransition, "invalid topic status transition")
	ErrSyllabusAlreadyExists = NewDomainError("syllabus", "Create", ErrAlreadyExists, "student already enrolled in course")
)

// Course domain errors
var (
	ErrCourseNotFound    = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrCourseHasNoTopics = NewDomainError("course", "Validate", ErrInvalidEntity, "course has no topics")
	ErrPersonaNotFound   = NewDomainError("course", "FindPersona", ErrNotFound, "persona config not found")
)

// Chat domain errors
var (
	ErrEmptyMessage    = NewDomainError("chat", "Validate", ErrEmptyValue, "message content cannot be empty")
	ErrInvalidChatRole = NewDomainError("chat", "Validate", ErrInvalidInput, "invalid chat role")
	ErrTranscriptEmpty = NewDomainError("chat", "Transcript", ErrNotFound, "no messages recorded for topic")
)

// Summary domain errors
var (
	ErrSummaryNotFound        = NewDomainError("summary", "Find", ErrNotFound, "topic summary not found")
	ErrSummaryAlreadyExists   = NewDomainError("summary", "Save", ErrAlreadyExists, "summary already recorded for topic")
	ErrInvalidEngagementLevel = NewDomainError("summary", "Validate", ErrInvalidInput, "invalid engagement level")
)

// External service errors
var (
	ErrModelUnavailable   = NewDomainError("gemini", "Generate", ErrServiceUnavailable, "Gemini API is unavailable")
	ErrModelRateLimited   = NewDomainError("gemini", "Generate", ErrRateLimited, "Gemini API rate limit exceeded")
	ErrModelTimeout       = NewDomainError("gemini", "Generate", ErrTimeout, "Gemini API request timeout")
	ErrModelEmptyResponse = NewDomainError("gemini", "Generate", ErrInvalidFormat, "empty response from Gemini API")
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
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
