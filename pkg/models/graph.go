// Package models defines the core domain models for graph-backed tool invocation.
package models

import (
	"encoding/json"
	"fmt"
)

// Graph is an immutable workflow template: an ordered set of nodes plus
// opaque links. Links are never inspected, only round-tripped.
type Graph struct {
	Name  string  `json:"name,omitempty"`
	Nodes []*Node `json:"nodes"`
	Links []any   `json:"links,omitempty"`
}

// Node is one addressable unit within a graph. Attributes holds every key
// of the original payload except id and type, preserved verbatim.
type Node struct {
	ID         int
	Type       string
	Attributes map[string]any
}

// UnmarshalJSON accepts the canonical node encoding: an object with integer
// "id", string "type" and arbitrary further keys.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, ok := raw["id"].(float64)
	if !ok {
		return fmt.Errorf("node is missing an integer id")
	}

	if id != float64(int(id)) {
		return fmt.Errorf("node id %v is not an integer", id)
	}

	nodeType, ok := raw["type"].(string)
	if !ok || nodeType == "" {
		return fmt.Errorf("node %d is missing a type", int(id))
	}

	delete(raw, "id")
	delete(raw, "type")

	n.ID = int(id)
	n.Type = nodeType
	n.Attributes = raw

	return nil
}

// MarshalJSON flattens the attribute map back alongside id and type.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Attributes)+2)
	for k, v := range n.Attributes {
		out[k] = v
	}

	out["id"] = n.ID
	out["type"] = n.Type

	return json.Marshal(out)
}

// NodeByID returns the node with the given id. Ids are compared by value
// equality, so id 0 is a valid match.
func (g *Graph) NodeByID(id int) (*Node, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// NodeByType returns the first node carrying the given type tag.
func (g *Graph) NodeByType(nodeType string) (*Node, bool) {
	for _, node := range g.Nodes {
		if node.Type == nodeType {
			return node, true
		}
	}

	return nil, false
}

// Clone returns a deep copy of the graph. Invocations mutate the copy and
// never the template, so concurrent invocations do not interfere.
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		Name:  g.Name,
		Nodes: make([]*Node, 0, len(g.Nodes)),
	}

	if g.Links != nil {
		clone.Links = deepCopyValue(g.Links).([]any)
	}

	for _, node := range g.Nodes {
		clone.Nodes = append(clone.Nodes, &Node{
			ID:         node.ID,
			Type:       node.Type,
			Attributes: deepCopyValue(node.Attributes).(map[string]any),
		})
	}

	return clone
}

// KeyedNodes exports the graph in the keyed form remote execution services
// consume: stringified node id mapped to type tag plus attributes.
func (g *Graph) KeyedNodes() map[string]any {
	keyed := make(map[string]any, len(g.Nodes))

	for _, node := range g.Nodes {
		entry := make(map[string]any, len(node.Attributes)+1)
		for k, v := range node.Attributes {
			entry[k] = v
		}

		entry["class_type"] = node.Type
		keyed[fmt.Sprintf("%d", node.ID)] = entry
	}

	return keyed
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = deepCopyValue(item)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopyValue(item)
		}

		return out
	default:
		return v
	}
}
