// Package persistence defines the storage interfaces the engine consumes.
// Implementations load graph templates and tool configuration once at
// startup; nothing is ever written back.
package persistence

import (
	"context"

	"github.com/stationml/gantry/pkg/models"
)

// Persistence aggregates the repositories backing the tool registry.
type Persistence interface {
	Graphs() GraphRepository
	ToolConfig() ToolConfigRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// GraphRepository yields every stored graph, keyed by name. Malformed
// entries are skipped with a logged diagnostic, never fatal to the batch.
type GraphRepository interface {
	GetAll(ctx context.Context) (map[string]*models.Graph, error)
}

// ToolConfigRepository yields the externally supplied tool definitions. An
// absent source means zero definitions, not an error (zero-config mode).
type ToolConfigRepository interface {
	Get(ctx context.Context) ([]models.ToolDefinition, error)
}
