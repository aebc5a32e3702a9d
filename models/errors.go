package models

import "fmt"

// ValidationError reports missing or malformed input. No state is changed.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PolicyError reports a group, role or version rule violation.
type PolicyError struct {
	Message string
}

func NewPolicyError(format string, args ...interface{}) *PolicyError {
	return &PolicyError{Message: fmt.Sprintf(format, args...)}
}

func (e *PolicyError) Error() string {
	return e.Message
}

// SequenceError reports an approval stage decided before its predecessor.
type SequenceError struct {
	Stage    ApprovalStage
	Requires ApprovalStage
	Message  string
}

func NewSequenceError(stage, requires ApprovalStage, message string) *SequenceError {
	return &SequenceError{Stage: stage, Requires: requires, Message: message}
}

func (e *SequenceError) Error() string {
	return e.Message
}

// GateLockedError reports an attempt to act on a gate whose predecessor is not approved.
type GateLockedError struct {
	Gate        Gate
	Predecessor Gate
	Message     string
}

func NewGateLockedError(gate, predecessor Gate, message string) *GateLockedError {
	return &GateLockedError{Gate: gate, Predecessor: predecessor, Message: message}
}

func (e *GateLockedError) Error() string {
	return e.Message
}

// StateError reports a transition that is not valid from the record's current state.
type StateError struct {
	Message string
}

func NewStateError(format string, args ...interface{}) *StateError {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

func (e *StateError) Error() string {
	return e.Message
}

// LimitError reports an exhausted version or submission cap.
type LimitError struct {
	Limit   int
	Message string
}

func NewLimitError(limit int, message string) *LimitError {
	return &LimitError{Limit: limit, Message: message}
}

func (e *LimitError) Error() string {
	return e.Message
}

// StorageError wraps a file store failure.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError is also returned when the caller may not see the resource.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

type UnauthorizedError struct {
	Message string
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}
