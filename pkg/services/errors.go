// Package services implements the invocation surface over the tool
// registry: discovery listings and tool invocation with optional remote
// execution.
package services

import "errors"

// Invocation errors. These are fatal to one invocation only and are
// returned as structured results, never past the invocation boundary.
var (
	// ErrToolNotFound is returned for unknown tool names.
	ErrToolNotFound = errors.New("tool not found")

	// ErrNoWorkflowBound is returned when invoking a tool whose workflow
	// reference could not be resolved at bind time.
	ErrNoWorkflowBound = errors.New("tool has no bound workflow")
)

// IsNotFoundError checks if an error should map to HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrToolNotFound)
}

// IsUnboundError checks if an error indicates an unbound tool.
func IsUnboundError(err error) bool {
	return errors.Is(err, ErrNoWorkflowBound)
}
