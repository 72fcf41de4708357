package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationml/gantry/pkg/models"
)

func TestNodeJSON_RoundTripPreservesUnknownKeys(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"id": 6, "type": "CLIPTextEncode", "inputs": {"text": "old"}, "color": "#223"}`)

	var node models.Node
	require.NoError(t, json.Unmarshal(raw, &node))

	assert.Equal(t, 6, node.ID)
	assert.Equal(t, "CLIPTextEncode", node.Type)
	assert.Equal(t, "#223", node.Attributes["color"])

	out, err := json.Marshal(&node)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, float64(6), decoded["id"])
	assert.Equal(t, "CLIPTextEncode", decoded["type"])
	assert.Equal(t, "#223", decoded["color"])
}

func TestNodeJSON_RejectsMissingIDOrType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing id", raw: `{"type": "KSampler"}`},
		{name: "fractional id", raw: `{"id": 6.5, "type": "KSampler"}`},
		{name: "missing type", raw: `{"id": 1}`},
		{name: "empty type", raw: `{"id": 1, "type": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var node models.Node
			require.Error(t, json.Unmarshal([]byte(tt.raw), &node))
		})
	}
}

func TestKeyedNodes(t *testing.T) {
	t.Parallel()

	g := &models.Graph{
		Name: "txt2img",
		Nodes: []*models.Node{
			{
				ID:   6,
				Type: "CLIPTextEncode",
				Attributes: map[string]any{
					"inputs": map[string]any{"text": "old"},
				},
			},
			{ID: 0, Type: "CheckpointLoader", Attributes: map[string]any{}},
		},
	}

	keyed := g.KeyedNodes()
	require.Len(t, keyed, 2)

	encode, ok := keyed["6"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "CLIPTextEncode", encode["class_type"])
	assert.Equal(t, map[string]any{"text": "old"}, encode["inputs"])

	// Node id 0 keys as "0", not dropped.
	require.Contains(t, keyed, "0")
}
