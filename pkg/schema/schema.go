// Package schema derives JSON-Schema input descriptors from tool field
// lists for discovery responses.
package schema

import "github.com/stationml/gantry/pkg/models"

// ProjectInputSchema builds the input schema for a tool's field list.
//
// A field is required iff it says so explicitly, or it has no way to
// obtain a value on its own: no default and no generator. Generated and
// defaulted fields are never implicitly required.
func ProjectInputSchema(fields []models.ToolField) *models.JSONSchema {
	out := &models.JSONSchema{
		Type:       "object",
		Properties: make(map[string]*models.Property, len(fields)),
	}

	for _, field := range fields {
		property := &models.Property{
			Type:        field.Type,
			Description: field.Description,
		}

		if property.Type == "" {
			property.Type = "string"
		}

		if field.HasDefault() {
			property.Default = field.Default
		}

		out.Properties[field.Name] = property

		if isRequired(field) {
			out.Required = append(out.Required, field.Name)
		}
	}

	return out
}

func isRequired(field models.ToolField) bool {
	if field.Required != nil {
		return *field.Required
	}

	return !field.HasDefault() && field.Generator == nil
}
