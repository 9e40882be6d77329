package resolver

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for error type checking. The resolution sentinels all
// wrap ErrResolution so callers can match the whole family with a
// single errors.Is check.
var (
	// ErrResolution is the root of every variable resolution failure.
	ErrResolution = errors.New("variable resolution failed")

	// ErrVariableNotFound indicates no definition exists for a name.
	ErrVariableNotFound = fmt.Errorf("%w: variable not found", ErrResolution)

	// ErrCircularReference indicates a reference chain revisited a name.
	ErrCircularReference = fmt.Errorf("%w: circular reference detected", ErrResolution)

	// ErrMaxDepthExceeded indicates a reference chain ran past the depth limit.
	ErrMaxDepthExceeded = fmt.Errorf("%w: max resolution depth exceeded", ErrResolution)

	// ErrNotAColor indicates a chain resolved to text that is not a color.
	ErrNotAColor = fmt.Errorf("%w: value is not a color", ErrResolution)

	// ErrPerformanceTimeout indicates an operation exceeded its time budget.
	ErrPerformanceTimeout = errors.New("operation exceeded its time budget")
)

// NotFoundError reports a variable with no reachable definition.
type NotFoundError struct {
	VariableName string
	URI          string
}

func (e *NotFoundError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("no definition found for %s", e.VariableName)
	}
	return fmt.Sprintf("no definition found for %s (looked from %s)", e.VariableName, e.URI)
}

func (e *NotFoundError) Unwrap() error {
	return ErrVariableNotFound
}

// NewNotFoundError creates a new variable-not-found error.
func NewNotFoundError(variableName, uri string) error {
	return &NotFoundError{
		VariableName: variableName,
		URI:          uri,
	}
}

// CircularReferenceError reports a reference chain that revisited a
// variable already being resolved.
type CircularReferenceError struct {
	VariableName string
	Chain        []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference resolving %s: %s",
		e.VariableName, strings.Join(e.Chain, " -> "))
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}

// NewCircularReferenceError creates a new circular reference error.
func NewCircularReferenceError(variableName string, chain []string) error {
	return &CircularReferenceError{
		VariableName: variableName,
		Chain:        chain,
	}
}

// MaxDepthError reports a reference chain that exceeded the configured
// depth limit. Visited carries every name expanded so far so callers
// can surface the runaway chain.
type MaxDepthError struct {
	VariableName string
	Depth        int
	Visited      []string
}

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("resolution of %s exceeded depth %d (visited: %s)",
		e.VariableName, e.Depth, strings.Join(e.Visited, ", "))
}

func (e *MaxDepthError) Unwrap() error {
	return ErrMaxDepthExceeded
}

// NewMaxDepthError creates a new max-depth-exceeded error.
func NewMaxDepthError(variableName string, depth int, visited []string) error {
	return &MaxDepthError{
		VariableName: variableName,
		Depth:        depth,
		Visited:      visited,
	}
}

// NotAColorError reports a definition whose fully resolved value does
// not parse as a color.
type NotAColorError struct {
	VariableName string
	Value        string
}

func (e *NotAColorError) Error() string {
	return fmt.Sprintf("%s resolves to %q, which is not a color", e.VariableName, e.Value)
}

func (e *NotAColorError) Unwrap() error {
	return ErrNotAColor
}

// NewNotAColorError creates a new not-a-color error.
func NewNotAColorError(variableName, value string) error {
	return &NotAColorError{
		VariableName: variableName,
		Value:        value,
	}
}

// PerformanceTimeoutError reports an operation that was abandoned for
// exceeding its budget. It is recoverable but logged at a higher
// severity than ordinary resolution failures.
type PerformanceTimeoutError struct {
	Operation string
	Budget    time.Duration
}

func (e *PerformanceTimeoutError) Error() string {
	return fmt.Sprintf("%s exceeded its %s budget", e.Operation, e.Budget)
}

func (e *PerformanceTimeoutError) Unwrap() error {
	return ErrPerformanceTimeout
}

// NewPerformanceTimeoutError creates a new performance timeout error.
func NewPerformanceTimeoutError(operation string, budget time.Duration) error {
	return &PerformanceTimeoutError{
		Operation: operation,
		Budget:    budget,
	}
}
