package models

// Provenance distinguishes explicitly configured tools from tools derived
// automatically for unclaimed graphs.
type Provenance string

const (
	ProvenanceExplicit Provenance = "explicit" // Declared in the tool configuration
	ProvenanceImplicit Provenance = "implicit" // Auto-derived from an unclaimed graph
)

// Generator declares how a field obtains a value when the caller supplies
// none. Strategies are an open set; unknown strategies degrade to a warning.
type Generator struct {
	Strategy string         `json:"strategy" validate:"required"`
	Options  map[string]any `json:"options,omitempty"`
}

// FieldMapping locates the node attribute a field writes to. Target accepts
// an integer node id, a numeric string, or a node type tag; it is preserved
// as given and resolved against the bound graph at invocation time.
type FieldMapping struct {
	Target        any    `json:"target"        validate:"required"`
	AttributePath string `json:"attributePath" validate:"required"`
}

// ToolField declares one caller-facing parameter of a tool. The declared
// type is advisory only and never coerced.
type ToolField struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description"`
	Type        string       `json:"type"`
	Mapping     FieldMapping `json:"mapping"`
	Generator   *Generator   `json:"generator,omitempty"`
	Required    *bool        `json:"required,omitempty"`
	Default     any          `json:"default,omitempty"`
}

// HasDefault reports whether the field declares a default value.
func (f ToolField) HasDefault() bool {
	return f.Default != nil
}

// ToolDefinition is a named parameter contract exposed to callers, bound to
// a workflow graph either explicitly or by name convention.
type ToolDefinition struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description"`
	Fields      []ToolField `json:"fields"`
	Workflow    string      `json:"workflow,omitempty"` // Explicit graph reference
}

// RegisteredTool is a tool definition bound (or not) to a graph template.
type RegisteredTool struct {
	Definition ToolDefinition
	Graph      *Graph // nil when no workflow could be resolved
	Provenance Provenance
}
