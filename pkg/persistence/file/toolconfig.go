package file

import (
	"context"
	"log/slog"
	"os"
	"path"

	"github.com/stationml/gantry/pkg/models"
	"github.com/stationml/gantry/pkg/tools"
)

// ToolConfigRepository loads tool definitions from <root>/tools.json.
type ToolConfigRepository struct {
	root   string
	logger *slog.Logger
}

func NewToolConfigRepository(root string, logger *slog.Logger) *ToolConfigRepository {
	return &ToolConfigRepository{root: root, logger: logger}
}

// Get reads and parses the tool configuration. An absent file yields zero
// definitions (zero-config mode). Skipped descriptors are logged; only an
// unrecognized payload shape is an error.
func (tr *ToolConfigRepository) Get(_ context.Context) ([]models.ToolDefinition, error) {
	configPath := path.Join(tr.root, "tools.json")

	raw, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	definitions, err := tools.LoadDefinitions(raw)
	if definitions == nil && err != nil {
		return nil, err
	}

	if err != nil {
		tr.logger.Warn("Skipped invalid tool descriptors", "file", configPath, "error", err)
	}

	return definitions, nil
}
