// Package tools loads tool definitions and binds them to workflow graphs.
package tools

import "errors"

var (
	// ErrInvalidConfigShape is returned when a tool configuration payload
	// is neither a descriptor array nor a tools-wrapped object.
	ErrInvalidConfigShape = errors.New("tool configuration must be an array or an object with a tools array")

	// ErrNoFields is returned for explicit tool descriptors that declare
	// no fields. Zero-field tools exist only as implicit tools derived
	// from unclaimed graphs.
	ErrNoFields = errors.New("tool must declare at least one field")

	// ErrDuplicateTool aborts binding: silently shadowing a tool would
	// change agent-visible behavior.
	ErrDuplicateTool = errors.New("duplicate tool name")
)
