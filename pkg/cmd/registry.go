package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stationml/gantry/pkg/persistence"
	"github.com/stationml/gantry/pkg/tools"
)

// NewRegistry loads graphs and tool configuration from persistence and
// binds them into the tool registry.
//
// A broken tool configuration degrades to zero-config mode (implicit tools
// only); a duplicate tool name aborts startup, since silently shadowing a
// tool changes agent-visible behavior.
func NewRegistry(ctx context.Context, logger *slog.Logger, p persistence.Persistence) (*tools.Registry, error) {
	graphs, err := p.Graphs().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load graphs: %w", err)
	}

	definitions, err := p.ToolConfig().Get(ctx)
	if err != nil {
		logger.Warn("Tool configuration unusable, continuing without explicit tools", "error", err)

		definitions = nil
	}

	registry, err := tools.Bind(logger, definitions, graphs)
	if err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	logger.Info("Tool registry ready", "graphs", len(graphs), "explicit_tools", len(definitions))

	return registry, nil
}
