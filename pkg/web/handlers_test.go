package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationml/gantry/pkg/injector"
	"github.com/stationml/gantry/pkg/models"
	"github.com/stationml/gantry/pkg/persistence/file"
	"github.com/stationml/gantry/pkg/services"
	"github.com/stationml/gantry/pkg/tools"
	"github.com/stationml/gantry/pkg/web"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	graphs := map[string]*models.Graph{
		"txt2img": {
			Name: "txt2img",
			Nodes: []*models.Node{
				{
					ID:   6,
					Type: "CLIPTextEncode",
					Attributes: map[string]any{
						"inputs": map[string]any{"text": "old"},
					},
				},
			},
		},
		"upscale": {
			Name:  "upscale",
			Nodes: []*models.Node{{ID: 1, Type: "ImageUpscale", Attributes: map[string]any{}}},
		},
	}

	defs := []models.ToolDefinition{
		{
			Name:        "generate_image",
			Description: "Generates an image",
			Workflow:    "txt2img",
			Fields: []models.ToolField{
				{
					Name:    "positive_prompt",
					Type:    "string",
					Mapping: models.FieldMapping{Target: 6, AttributePath: "inputs.text"},
				},
				{
					Name:      "seed",
					Type:      "integer",
					Mapping:   models.FieldMapping{Target: 6, AttributePath: "seed"},
					Generator: &models.Generator{Strategy: "seed"},
				},
			},
		},
	}

	registry, err := tools.Bind(slog.Default(), defs, graphs)
	require.NoError(t, err)

	persistence := file.NewPersistence(t.TempDir(), slog.Default())
	toolService := services.NewTools(slog.Default(), persistence, registry, injector.New())
	validate := validator.New(validator.WithRequiredStructEnabled())

	handlers := web.NewAPIHandlers(toolService, validate, registry)

	app := fiber.New()

	g := app.Group("/tools")
	g.Get("/", handlers.ListTools)
	g.Post("/:name/invoke", handlers.InvokeTool)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, payload
}

func TestListTools(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/tools/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed web.ListToolsResponse
	require.NoError(t, json.Unmarshal(body, &listed))

	// One explicit tool plus one implicit tool for the unclaimed graph.
	require.Len(t, listed.Tools, 2)
	assert.Equal(t, "generate_image", listed.Tools[0].Name)
	assert.Equal(t, models.ProvenanceExplicit, listed.Tools[0].Provenance)
	assert.Equal(t, "upscale", listed.Tools[1].Name)
	assert.Equal(t, models.ProvenanceImplicit, listed.Tools[1].Provenance)

	schema := listed.Tools[0].InputSchema
	require.NotNil(t, schema)
	assert.Contains(t, schema.Properties, "positive_prompt")
	assert.Equal(t, []string{"positive_prompt"}, schema.Required)
}

func TestInvokeTool(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodPost, "/tools/generate_image/invoke", web.InvokeToolRequest{
		Arguments: map[string]any{"positive_prompt": "a lighthouse at dusk"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result web.InvokeToolResponse
	require.NoError(t, json.Unmarshal(body, &result))

	assert.Equal(t, "ok", result.Status)
	assert.Empty(t, result.Warnings)
	require.NotNil(t, result.Graph)

	node, ok := result.Graph.NodeByID(6)
	require.True(t, ok)
	inputs := node.Attributes["inputs"].(map[string]any)
	assert.Equal(t, "a lighthouse at dusk", inputs["text"])

	// The generated seed landed in the existing inputs map, no warning.
	assert.Contains(t, inputs, "seed")
}

func TestInvokeTool_ImplicitToolWithoutBody(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodPost, "/tools/upscale/invoke", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result web.InvokeToolResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "ok", result.Status)
	require.NotNil(t, result.Graph)
}

func TestInvokeTool_UnknownTool(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doRequest(t, app, http.MethodPost, "/tools/nope/invoke", web.InvokeToolRequest{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvokeTool_ArgumentTypeMismatch(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodPost, "/tools/generate_image/invoke", web.InvokeToolRequest{
		Arguments: map[string]any{"positive_prompt": 12345},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "positive_prompt")
}

func TestInvokeTool_MissingFieldIsAWarningNotARejection(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodPost, "/tools/generate_image/invoke", web.InvokeToolRequest{
		Arguments: map[string]any{},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result web.InvokeToolResponse
	require.NoError(t, json.Unmarshal(body, &result))

	assert.Equal(t, "ok", result.Status)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "positive_prompt")
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
}
