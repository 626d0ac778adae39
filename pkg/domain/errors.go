package domain

import (
	"errors"
	"fmt"
)

// ErrFlowNotFound is returned when no flow is stored for an agent.
var ErrFlowNotFound = errors.New("flow not found")

// ExtractionError is returned when generated text holds no JSON-shaped region.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Reason
}

// ValidationError is returned when a JSON payload is present but does not
// describe a well-formed flow.
type ValidationError struct {
	Path   string // e.g. "nodes[2].position"; empty for document-level failures
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Path, e.Reason)
}

// CollaboratorError wraps a failure of the external text generator.
type CollaboratorError struct {
	Provider string
	Err      error
}

func (e *CollaboratorError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("generator failed: %v", e.Err)
	}
	return fmt.Sprintf("generator %s failed: %v", e.Provider, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// PreconditionError signals a programmer error, such as laying out a flow
// whose edges reference missing nodes.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition violated: " + e.Reason
}
