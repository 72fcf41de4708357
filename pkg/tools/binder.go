package tools

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/stationml/gantry/pkg/models"
)

// Bind matches each explicit tool definition to a graph and folds in one
// implicit tool per unclaimed graph, so every stored graph stays invocable
// even without authored configuration.
//
// Resolution order per definition, first match wins: the explicit workflow
// reference, then a graph named after the tool itself. A definition that
// resolves to nothing is retained unbound; invoking it fails later, but it
// still shows up in discovery.
func Bind(logger *slog.Logger, definitions []models.ToolDefinition, graphs map[string]*models.Graph) (*Registry, error) {
	registry := &Registry{
		logger: logger,
		tools:  make(map[string]*models.RegisteredTool, len(definitions)+len(graphs)),
	}

	claimed := make(map[string]bool, len(definitions))

	for _, def := range definitions {
		if _, exists := registry.tools[def.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, def.Name)
		}

		graphName := def.Workflow
		if graphName == "" {
			graphName = def.Name
		}

		bound := graphs[graphName]
		if bound != nil {
			claimed[graphName] = true
		} else {
			logger.Warn("Tool has no bound workflow",
				"tool", def.Name,
				"workflow", graphName)
		}

		registry.tools[def.Name] = &models.RegisteredTool{
			Definition: def,
			Graph:      bound,
			Provenance: models.ProvenanceExplicit,
		}
	}

	for _, name := range sortedGraphNames(graphs) {
		if claimed[name] {
			continue
		}

		if _, exists := registry.tools[name]; exists {
			// An unclaimed graph sharing its name with an explicit tool
			// cannot be exposed without shadowing it.
			logger.Warn("Skipping implicit tool: name taken by an explicit tool", "graph", name)

			continue
		}

		registry.tools[name] = &models.RegisteredTool{
			Definition: models.ToolDefinition{
				Name:        name,
				Description: fmt.Sprintf("Runs the %s workflow as stored, without parameters.", name),
			},
			Graph:      graphs[name],
			Provenance: models.ProvenanceImplicit,
		}
	}

	return registry, nil
}

func sortedGraphNames(graphs map[string]*models.Graph) []string {
	names := make([]string, 0, len(graphs))
	for name := range graphs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
