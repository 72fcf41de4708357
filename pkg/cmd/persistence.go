// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"
	"strings"

	"github.com/stationml/gantry/pkg/persistence"
	"github.com/stationml/gantry/pkg/persistence/file"
)

var supportedPersistenceProviders = []string{"file"}

func NewPersistence(dataURL string, logger *slog.Logger) persistence.Persistence {
	provider := parsePersistenceProvider(dataURL)

	switch provider {
	default:
		return file.NewPersistence(dataURL, logger)
	}
}

func parsePersistenceProvider(dataURL string) string {
	parts := strings.Split(dataURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
