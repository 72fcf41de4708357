// Package injector resolves tool field values and writes them into a copy
// of the bound graph template. Field-level problems (unresolvable node,
// missing value, unknown generator strategy) are collected as warnings and
// never abort the remaining fields: partial application is allowed and the
// caller sees the warning list.
package injector

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/stationml/gantry/pkg/models"
)

// Injector applies tool fields to graph templates. The random source backs
// the value generators and can be pinned for deterministic tests.
type Injector struct {
	rng *rand.Rand
}

func New() *Injector {
	return &Injector{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewWithRand builds an injector over a caller-controlled random source.
func NewWithRand(rng *rand.Rand) *Injector {
	return &Injector{rng: rng}
}

// Apply resolves every field of the definition against the supplied
// arguments and writes the values into a deep copy of the template. The
// template itself is never mutated, so concurrent invocations of the same
// tool cannot interfere.
func (in *Injector) Apply(template *models.Graph, def models.ToolDefinition, args map[string]any) (*models.Graph, []string) {
	clone := template.Clone()
	warnings := make([]string, 0)

	for _, field := range def.Fields {
		node, found := lookupNode(clone, field.Mapping.Target)
		if !found {
			warnings = append(warnings, fmt.Sprintf("field %q: no node matches target %v", field.Name, field.Mapping.Target))

			continue
		}

		value, resolved, warning := in.resolveValue(field, args)
		if warning != "" {
			warnings = append(warnings, warning)
		}

		if !resolved {
			continue
		}

		writeValue(node, field.Mapping.AttributePath, value)
	}

	return clone, warnings
}

// resolveValue picks a value for the field: caller-supplied first (presence
// check, so false, 0 and "" are honored verbatim), then the declared
// generator, then the declared default.
func (in *Injector) resolveValue(field models.ToolField, args map[string]any) (any, bool, string) {
	if value, supplied := args[field.Name]; supplied {
		return value, true, ""
	}

	var generatorWarning string

	if field.Generator != nil {
		switch field.Generator.Strategy {
		case "seed":
			seed, ok := in.generateSeed(field.Generator.Options)
			if ok {
				return seed, true, ""
			}

			generatorWarning = fmt.Sprintf("field %q: seed generator bounds are empty (min exceeds max)", field.Name)
		case "random":
			return in.rng.Float64(), true, ""
		default:
			generatorWarning = unsupportedStrategy(field)
		}
	}

	if field.HasDefault() {
		return field.Default, true, generatorWarning
	}

	if generatorWarning != "" {
		return nil, false, generatorWarning
	}

	return nil, false, fmt.Sprintf("field %q: no value supplied and no generator declared", field.Name)
}

func unsupportedStrategy(field models.ToolField) string {
	return fmt.Sprintf("field %q: unsupported generator strategy %q", field.Name, field.Generator.Strategy)
}

// maxSeed caps generated seeds at the largest integer a JSON consumer can
// represent exactly (2^53 - 1).
const maxSeed = int64(1)<<53 - 1

// generateSeed draws from the declared [min, max] range. An empty range
// (min above max, declared or against the default cap) yields no value:
// options are config input and must never panic the process.
func (in *Injector) generateSeed(options map[string]any) (int64, bool) {
	minValue := int64(0)
	maxValue := maxSeed

	if v, ok := numericOption(options, "min"); ok {
		minValue = v
	}

	if v, ok := numericOption(options, "max"); ok {
		maxValue = v
	}

	if maxValue < minValue {
		return 0, false
	}

	return minValue + in.rng.Int64N(maxValue-minValue+1), true
}

func numericOption(options map[string]any, key string) (int64, bool) {
	if options == nil {
		return 0, false
	}

	switch v := options[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// lookupNode resolves a mapping target against the graph: numeric id
// equality first (an id of 0 is a valid match), then the node type tag.
func lookupNode(g *models.Graph, target any) (*models.Node, bool) {
	if id, ok := numericTarget(target); ok {
		if node, found := g.NodeByID(id); found {
			return node, true
		}
	}

	if typeTag, ok := target.(string); ok {
		return g.NodeByType(typeTag)
	}

	return nil, false
}

func numericTarget(target any) (int, bool) {
	switch v := target.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}

		return 0, false
	case string:
		id, err := strconv.Atoi(v)

		return id, err == nil
	default:
		return 0, false
	}
}

// writeValue writes the resolved value at the field's attribute path.
//
// A bare path writes into the node's existing inputs map, else its
// existing properties map, else onto the attribute root; containers are
// never created for bare paths. A dotted path is always anchored at the
// attribute root and creates intermediate maps as needed, so reaching a
// nested inputs map requires naming it explicitly (e.g. "inputs.text").
func writeValue(node *models.Node, path string, value any) {
	if node.Attributes == nil {
		node.Attributes = make(map[string]any)
	}

	if !strings.Contains(path, ".") {
		if inputs, ok := node.Attributes["inputs"].(map[string]any); ok {
			inputs[path] = value

			return
		}

		if properties, ok := node.Attributes["properties"].(map[string]any); ok {
			properties[path] = value

			return
		}

		node.Attributes[path] = value

		return
	}

	segments := strings.Split(path, ".")
	current := node.Attributes

	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}

		current = next
	}

	current[segments[len(segments)-1]] = value
}
