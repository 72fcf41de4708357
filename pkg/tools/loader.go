package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/stationml/gantry/pkg/models"
)

type wrappedConfig struct {
	Tools []json.RawMessage `json:"tools"`
}

// LoadDefinitions parses a tool configuration payload: either a bare array
// of descriptors or an object wrapping one under "tools".
//
// Descriptor-level problems (missing name, zero fields, incomplete field
// mappings) exclude the offending descriptor only; the remaining
// definitions are returned together with a joined error so the caller can
// log what was skipped. Only an unrecognized payload shape fails the whole
// source, with ErrInvalidConfigShape.
func LoadDefinitions(raw []byte) ([]models.ToolDefinition, error) {
	descriptors, err := splitDescriptors(raw)
	if err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	definitions := make([]models.ToolDefinition, 0, len(descriptors))

	var errs []error

	for i, descriptor := range descriptors {
		var def models.ToolDefinition
		if err := json.Unmarshal(descriptor, &def); err != nil {
			errs = append(errs, fmt.Errorf("tool descriptor %d: %w", i, err))

			continue
		}

		if len(def.Fields) == 0 {
			errs = append(errs, fmt.Errorf("tool %q: %w", def.Name, ErrNoFields))

			continue
		}

		if err := validate.Struct(def); err != nil {
			errs = append(errs, fmt.Errorf("tool %q: %w", def.Name, err))

			continue
		}

		definitions = append(definitions, def)
	}

	return definitions, errors.Join(errs...)
}

func splitDescriptors(raw []byte) ([]json.RawMessage, error) {
	// A literal null decodes into a nil slice without error; only a real
	// array counts as a descriptor list.
	var descriptors []json.RawMessage
	if err := json.Unmarshal(raw, &descriptors); err == nil && descriptors != nil {
		return descriptors, nil
	}

	var wrapped wrappedConfig
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Tools != nil {
		return wrapped.Tools, nil
	}

	return nil, ErrInvalidConfigShape
}
