package web

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stationml/gantry/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// validateArguments checks supplied arguments against the tool's projected
// input schema, types only. The required list is stripped first: missing
// values are the engine's concern and surface as invocation warnings, not
// as request rejections.
func validateArguments(inputSchema *models.JSONSchema, args map[string]any) error {
	relaxed := *inputSchema
	relaxed.Required = nil

	schemaJSON, err := json.Marshal(relaxed)
	if err != nil {
		return fmt.Errorf("failed to encode input schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("argument validation failed: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		details = append(details, resultErr.String())
	}

	return fmt.Errorf("invalid arguments: %s", strings.Join(details, "; "))
}
