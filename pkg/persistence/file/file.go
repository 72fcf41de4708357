// Package file provides file-based persistence for graph templates and
// tool configuration. Graphs live as <root>/graphs/<name>.json, the tool
// configuration as <root>/tools.json.
package file

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/stationml/gantry/pkg/persistence"
)

// Persistence implements persistence.Persistence over a root directory.
type Persistence struct {
	root       string
	graphRepo  *GraphRepository
	configRepo *ToolConfigRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A file:// prefix is accepted and stripped.
func NewPersistence(root string, logger *slog.Logger) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:       cleanRoot,
		graphRepo:  NewGraphRepository(cleanRoot, logger),
		configRepo: NewToolConfigRepository(cleanRoot, logger),
	}
}

// Graphs returns the graph repository.
func (fp *Persistence) Graphs() persistence.GraphRepository {
	return fp.graphRepo
}

// ToolConfig returns the tool configuration repository.
func (fp *Persistence) ToolConfig() persistence.ToolConfigRepository {
	return fp.configRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there
// is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
