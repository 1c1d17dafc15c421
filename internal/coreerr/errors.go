// Package coreerr defines the tagged error taxonomy shared by every core
// subsystem. Core functions never use exceptions for control flow; they
// return a wrapped *CoreError (or plain error for truly unexpected failures)
// and let the (out of scope) HTTP adapter translate Code to a status code.
package coreerr

import (
	"errors"
	"fmt"
)

// Code classifies a CoreError for the HTTP adapter's status mapping.
type Code string

const (
	// CodeValidation covers malformed requests, out-of-bounds parameters,
	// invalid time windows, unknown SAR modes.
	CodeValidation Code = "validation_error"
	// CodeGovernance covers admin-only parameter overrides sent without
	// allow_bus_override.
	CodeGovernance Code = "governance_violation"
	// CodeNotFound covers absent workspace/plan/acquisition/conflict ids.
	CodeNotFound Code = "not_found"
	// CodeConflictState covers double-commit, repair budget exceeded, and
	// hard-lock invariant violations.
	CodeConflictState Code = "conflict_state"
	// CodeEphemeris covers propagator refusals.
	CodeEphemeris Code = "ephemeris_error"
	// CodePersistence covers aborted transactions.
	CodePersistence Code = "persistence_error"
)

// Violation is one entry in a ResolveResult's violations list or a
// ValidationError's detail list.
type Violation struct {
	Field          string `json:"field"`
	Severity       string `json:"severity"` // "error" or "warning"
	Message        string `json:"message"`
	SuggestedValue any    `json:"suggested_value,omitempty"`
}

// CoreError is the single error type every core function returns for
// taxonomy-bound failures. Unexpected internal failures still wrap
// PersistenceError or EphemerisError rather than panicking.
type CoreError struct {
	Code       Code
	Message    string
	Violations []Violation
	cause      error
}

func (e *CoreError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CoreError) Unwrap() error { return e.cause }

// Is reports whether target is a *CoreError with the same Code, so
// errors.Is(err, coreerr.ErrAlreadyCommitted) matches any CodeConflictState
// error; callers that need more than the Code use errors.As.
func (e *CoreError) Is(target error) bool {
	var other *CoreError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

func newErr(code Code, msg string, cause error) *CoreError {
	return &CoreError{Code: code, Message: msg, cause: cause}
}

// Validation builds a CodeValidation error, optionally carrying violations.
func Validation(msg string, violations ...Violation) *CoreError {
	e := newErr(CodeValidation, msg, nil)
	e.Violations = violations
	return e
}

// Governance builds a CodeGovernance error for a single offending field.
func Governance(field, msg string) *CoreError {
	return newErr(CodeGovernance, msg, nil).withViolation(Violation{
		Field:    field,
		Severity: "error",
		Message:  msg,
	})
}

func (e *CoreError) withViolation(v Violation) *CoreError {
	e.Violations = append(e.Violations, v)
	return e
}

// NotFound builds a CodeNotFound error for the given entity/id.
func NotFound(entity, id string) *CoreError {
	return newErr(CodeNotFound, fmt.Sprintf("%s %q not found", entity, id), nil)
}

// ConflictState builds a CodeConflictState error, e.g. double-commit.
func ConflictState(msg string) *CoreError {
	return newErr(CodeConflictState, msg, nil)
}

// Ephemeris wraps a propagator failure.
func Ephemeris(msg string, cause error) *CoreError {
	return newErr(CodeEphemeris, msg, cause)
}

// Persistence wraps a transaction failure. The caller must treat this as
// "no partial state is visible" on any failure.
func Persistence(msg string, cause error) *CoreError {
	return newErr(CodePersistence, msg, cause)
}

// ErrRepairBudgetExceeded is returned by the repair planner when the
// proposed diff exceeds max_changes.
var ErrRepairBudgetExceeded = ConflictState("repair budget exceeded")

// ErrAlreadyCommitted is returned when committing a plan that already has
// a committed_at timestamp.
var ErrAlreadyCommitted = ConflictState("plan already committed")

// ErrHardLockViolated is returned when a repair diff would drop a
// hard-locked acquisition; the diff is rejected before it is returned.
var ErrHardLockViolated = ConflictState("hard lock invariant violated")

// As is a thin re-export of errors.As so callers needn't import both
// packages just to unwrap a CoreError.
func As(err error, target **CoreError) bool {
	return errors.As(err, target)
}
