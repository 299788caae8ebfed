package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRetryExhausted is returned when a failed task has already used up its
// retry budget.
var ErrRetryExhausted = errors.New("task retries exhausted")

// FieldViolation names one column/rule pair a batch violated.
type FieldViolation struct {
	Column  string `json:"column"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError rejects a whole ingestion batch. It carries every
// violation found so callers see the full picture in one pass.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Column, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError signals an absent hotel record or task id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// StateError signals an illegal task transition, e.g. retrying a task that
// has not failed. These are caller bugs, not transient conditions.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

// StoreError wraps an underlying persistence failure. Treated as transient:
// a task that failed with one is eligible for retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
