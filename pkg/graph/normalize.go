// Package graph normalizes stored workflow payloads into the canonical
// graph model. Two encodings are accepted: the classic node-array form and
// the keyed export form used by graph editors, where top-level keys are
// stringified node ids. Classification happens once at this boundary;
// everything downstream sees only models.Graph.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/stationml/gantry/pkg/models"
)

var (
	// ErrUnsupportedFormat is returned when a payload matches neither
	// accepted graph encoding.
	ErrUnsupportedFormat = errors.New("unsupported graph format")

	// ErrEmptyGraph is returned when a keyed export yields zero
	// convertible nodes.
	ErrEmptyGraph = errors.New("graph contains no convertible nodes")
)

// Normalize parses a raw graph payload into the canonical graph model.
func Normalize(name string, raw []byte) (*models.Graph, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
	}

	if nodesRaw, ok := payload["nodes"]; ok && isJSONArray(nodesRaw) {
		return normalizeClassic(name, nodesRaw, payload["links"])
	}

	// A payload wrapping a keyed export under "prompt" is used directly,
	// without re-deriving ids.
	if promptRaw, ok := payload["prompt"]; ok && isJSONObject(promptRaw) {
		return normalizeKeyed(name, promptRaw)
	}

	if hasObjectValue(payload) {
		return normalizeKeyed(name, raw)
	}

	return nil, ErrUnsupportedFormat
}

func normalizeClassic(name string, nodesRaw, linksRaw json.RawMessage) (*models.Graph, error) {
	var nodes []*models.Node
	if err := json.Unmarshal(nodesRaw, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
	}

	g := &models.Graph{Name: name, Nodes: nodes}

	if len(linksRaw) > 0 {
		if err := json.Unmarshal(linksRaw, &g.Links); err != nil {
			return nil, fmt.Errorf("%w: invalid links: %s", ErrUnsupportedFormat, err)
		}
	}

	return g, nil
}

// normalizeKeyed converts a keyed export: each top-level key is a node id,
// each value an object carrying a type tag (class_type preferred) plus the
// node payload. Non-numeric keys and untagged entries are dropped,
// best-effort.
func normalizeKeyed(name string, raw json.RawMessage) (*models.Graph, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
	}

	nodes := make([]*models.Node, 0, len(entries))

	for key, entryRaw := range entries {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}

		var attrs map[string]any
		if err := json.Unmarshal(entryRaw, &attrs); err != nil {
			continue
		}

		nodeType, tagKey := typeTag(attrs)
		if nodeType == "" {
			continue
		}

		delete(attrs, tagKey)

		nodes = append(nodes, &models.Node{ID: id, Type: nodeType, Attributes: attrs})
	}

	if len(nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	return &models.Graph{Name: name, Nodes: nodes}, nil
}

func typeTag(attrs map[string]any) (value, key string) {
	if classType, ok := attrs["class_type"].(string); ok && classType != "" {
		return classType, "class_type"
	}

	if nodeType, ok := attrs["type"].(string); ok && nodeType != "" {
		return nodeType, "type"
	}

	return "", ""
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '['
		}
	}

	return false
}

func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '{'
		}
	}

	return false
}

func hasObjectValue(payload map[string]json.RawMessage) bool {
	for _, raw := range payload {
		if isJSONObject(raw) {
			return true
		}
	}

	return false
}
