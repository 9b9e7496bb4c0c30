package errors

import (
	"fmt"
	"strings"
)

// DomainErrorType buckets domain failures into the categories the
// HTTP layer knows how to map onto status codes
type DomainErrorType string

const (
	DomainValidationError   DomainErrorType = "VALIDATION_ERROR"
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"
	DomainNotFoundError     DomainErrorType = "NOT_FOUND"
	DomainConflictError     DomainErrorType = "CONFLICT"
)

// DomainError is a rule violation raised by the canvas model. Code
// identifies the exact rule; Type picks the response status.
type DomainError struct {
	Type    DomainErrorType        `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// NewDomainError builds a catalog entry
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// WithCause returns a copy of the error with a cause attached. Catalog
// errors are shared package vars, so builders copy rather than mutate.
func (e *DomainError) WithCause(cause error) *DomainError {
	clone := e.clone()
	clone.Cause = cause
	return clone
}

// WithDetail returns a copy of the error with an extra detail
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	clone := e.clone()
	clone.Details[key] = value
	return clone
}

func (e *DomainError) clone() *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	return &DomainError{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// Is matches by Type and Code so wrapped catalog errors still compare
// equal through errors.Is
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	return ok && e.Type == other.Type && e.Code == other.Code
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Common domain errors for the canvas model

var (
	// Node errors
	ErrNodeNotFound = NewDomainError(
		DomainNotFoundError,
		"NODE_NOT_FOUND",
		"The requested node does not exist on this canvas",
	)

	ErrElementIDRequired = NewDomainError(
		DomainValidationError,
		"ELEMENT_ID_REQUIRED",
		"Element id cannot be empty",
	)

	ErrInvalidNodePosition = NewDomainError(
		DomainValidationError,
		"INVALID_NODE_POSITION",
		"Node position coordinates are invalid",
	)

	ErrInvalidNodeSize = NewDomainError(
		DomainValidationError,
		"INVALID_NODE_SIZE",
		"Node dimensions must be positive finite numbers",
	)

	// Connector errors
	ErrConnectorNotFound = NewDomainError(
		DomainNotFoundError,
		"CONNECTOR_NOT_FOUND",
		"The requested connector does not exist on this canvas",
	)

	ErrDanglingEndpoint = NewDomainError(
		DomainBusinessRuleError,
		"DANGLING_ENDPOINT",
		"Connector endpoint references a node missing from the canvas",
	)

	ErrInvalidOffset = NewDomainError(
		DomainValidationError,
		"INVALID_OFFSET",
		"Connection point offset must lie within [0,1]",
	)

	// Canvas errors
	ErrCanvasNotFound = NewDomainError(
		DomainNotFoundError,
		"CANVAS_NOT_FOUND",
		"The requested canvas does not exist",
	)

	ErrElementIDTaken = NewDomainError(
		DomainConflictError,
		"ELEMENT_ID_TAKEN",
		"An element with this id already exists on the canvas",
	)

	ErrNodeLimitExceeded = NewDomainError(
		DomainBusinessRuleError,
		"NODE_LIMIT_EXCEEDED",
		"Maximum number of nodes on a canvas exceeded",
	)

	ErrConnectorLimitExceeded = NewDomainError(
		DomainBusinessRuleError,
		"CONNECTOR_LIMIT_EXCEEDED",
		"Maximum number of connectors on a canvas exceeded",
	)

	// History errors
	ErrNothingToUndo = NewDomainError(
		DomainBusinessRuleError,
		"NOTHING_TO_UNDO",
		"Undo history is already at its oldest entry",
	)

	ErrNothingToRedo = NewDomainError(
		DomainBusinessRuleError,
		"NOTHING_TO_REDO",
		"Redo history is already at its newest entry",
	)

	// Gesture errors
	ErrGestureActive = NewDomainError(
		DomainConflictError,
		"GESTURE_ACTIVE",
		"Another gesture is already in progress",
	)

	ErrGestureNotActive = NewDomainError(
		DomainBusinessRuleError,
		"GESTURE_NOT_ACTIVE",
		"No gesture of this kind is in progress",
	)

	// Versioning errors
	ErrVersionNotFound = NewDomainError(
		DomainNotFoundError,
		"VERSION_NOT_FOUND",
		"The requested canvas checkpoint does not exist",
	)
)

// ValidationErrors collects every field failure from one request so
// the client sees them all at once
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors returns an empty collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*DomainError, 0)}
}

// Add records a failure against a named field
func (v *ValidationErrors) Add(field string, message string) {
	err := NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// AddError records an already-built domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

// HasErrors reports whether anything was recorded
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	parts := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		parts[i] = err.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ToMap groups messages by field for the response body. Failures with
// no field detail land under "general".
func (v *ValidationErrors) ToMap() map[string][]string {
	byField := make(map[string][]string)
	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		byField[field] = append(byField[field], err.Message)
	}
	return byField
}
