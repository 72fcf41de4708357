package tools

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/stationml/gantry/pkg/models"
)

// Registry holds every invocable tool, explicit and implicit, keyed by
// name. It is built once at startup and read-only afterwards.
type Registry struct {
	logger *slog.Logger
	tools  map[string]*models.RegisteredTool
}

// Get returns the registered tool with the given name.
func (r *Registry) Get(name string) (*models.RegisteredTool, bool) {
	tool, ok := r.tools[name]

	return tool, ok
}

// List returns every registered tool, sorted by name so discovery
// responses are stable across calls.
func (r *Registry) List() []*models.RegisteredTool {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}

	sort.Strings(names)

	out := make([]*models.RegisteredTool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}

	return out
}

// HealthCheck reports whether the registry holds at least one tool.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.tools) == 0 {
		return "no tools registered", false
	}

	return fmt.Sprintf("%d tools registered", len(r.tools)), true
}
