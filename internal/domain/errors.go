package domain

import "fmt"

// ErrorKind classifies a ValuationError, returned to callers of
// RunValuation alongside a human-readable detail string.
type ErrorKind string

const (
	InvalidInput      ErrorKind = "InvalidInput"
	ResourceExhausted ErrorKind = "ResourceExhausted"
	Cancelled         ErrorKind = "Cancelled"
	ExecutionError    ErrorKind = "ExecutionError"
	CapacityExceeded  ErrorKind = "CapacityExceeded"
)

// ValuationError is the concrete error type returned by the driver. It
// carries an ErrorKind so callers can branch on the taxonomy without string
// matching, plus an optional offending policy/scenario for ExecutionError.
type ValuationError struct {
	Kind       ErrorKind
	Detail     string
	PolicyID   *uint32
	ScenarioID *int
	Cause      error
}

func (e *ValuationError) Error() string {
	switch {
	case e.PolicyID != nil && e.ScenarioID != nil:
		return fmt.Sprintf("%s: %s (policy=%d scenario=%d)", e.Kind, e.Detail, *e.PolicyID, *e.ScenarioID)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

func (e *ValuationError) Unwrap() error { return e.Cause }

// NewInvalidInput builds an InvalidInput error.
func NewInvalidInput(format string, args ...any) *ValuationError {
	return &ValuationError{Kind: InvalidInput, Detail: fmt.Sprintf(format, args...)}
}

// NewResourceExhausted builds a ResourceExhausted error.
func NewResourceExhausted(format string, args ...any) *ValuationError {
	return &ValuationError{Kind: ResourceExhausted, Detail: fmt.Sprintf(format, args...)}
}

// NewCancelled builds the sentinel Cancelled error.
func NewCancelled() *ValuationError {
	return &ValuationError{Kind: Cancelled, Detail: "cancellation token observed"}
}

// NewExecutionError builds an ExecutionError naming the offending policy
// and scenario, as the kernel's NaN/Inf guards do when a projection goes
// non-finite.
func NewExecutionError(policyID uint32, scenarioID int, format string, args ...any) *ValuationError {
	return &ValuationError{
		Kind:       ExecutionError,
		Detail:     fmt.Sprintf(format, args...),
		PolicyID:   &policyID,
		ScenarioID: &scenarioID,
	}
}

// NewCapacityExceeded builds a CapacityExceeded error.
func NewCapacityExceeded(format string, args ...any) *ValuationError {
	return &ValuationError{Kind: CapacityExceeded, Detail: fmt.Sprintf(format, args...)}
}
