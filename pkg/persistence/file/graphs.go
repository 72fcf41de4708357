package file

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/stationml/gantry/pkg/graph"
	"github.com/stationml/gantry/pkg/models"
)

// GraphRepository loads graph templates from <root>/graphs/*.json. The
// file stem becomes the graph name.
type GraphRepository struct {
	root   string
	logger *slog.Logger
}

func NewGraphRepository(root string, logger *slog.Logger) *GraphRepository {
	return &GraphRepository{root: root, logger: logger}
}

// GetAll reads and normalizes every stored graph. Malformed files are
// logged and skipped so one bad export cannot take the whole batch down.
func (gr *GraphRepository) GetAll(_ context.Context) (map[string]*models.Graph, error) {
	graphsDir := path.Join(gr.root, "graphs")

	if _, err := os.Stat(graphsDir); os.IsNotExist(err) {
		return map[string]*models.Graph{}, nil
	}

	root := os.DirFS(graphsDir)

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list graph files: %w", err)
	}

	graphs := make(map[string]*models.Graph, len(jsonFiles))

	for _, file := range jsonFiles {
		name := strings.TrimSuffix(file, ".json")

		raw, err := fs.ReadFile(root, file)
		if err != nil {
			gr.logger.Warn("Skipping unreadable graph file", "file", file, "error", err)

			continue
		}

		g, err := graph.Normalize(name, raw)
		if err != nil {
			gr.logger.Warn("Skipping malformed graph file", "file", file, "error", err)

			continue
		}

		graphs[name] = g
	}

	return graphs, nil
}
