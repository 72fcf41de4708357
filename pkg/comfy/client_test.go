package comfy_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationml/gantry/pkg/comfy"
	"github.com/stationml/gantry/pkg/models"
)

func sampleGraph() *models.Graph {
	return &models.Graph{
		Name: "txt2img",
		Nodes: []*models.Node{
			{
				ID:   6,
				Type: "CLIPTextEncode",
				Attributes: map[string]any{
					"inputs": map[string]any{"text": "a lighthouse at dusk"},
				},
			},
		},
	}
}

func TestClient_Submit(t *testing.T) {
	t.Parallel()

	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/prompt", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(map[string]any{"prompt_id": "job-1"})
	}))
	defer server.Close()

	client := comfy.NewClient(server.URL, slog.Default())

	jobID, err := client.Submit(context.Background(), sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)

	// The graph goes over the wire in keyed form with a client identity.
	assert.NotEmpty(t, received["client_id"])
	prompt, ok := received["prompt"].(map[string]any)
	require.True(t, ok)
	node, ok := prompt["6"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "CLIPTextEncode", node["class_type"])
}

func TestClient_SubmitRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "invalid prompt", http.StatusBadRequest)
			},
		},
		{
			name: "error payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"error": "node 6 unknown"})
			},
		},
		{
			name: "missing job id",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := comfy.NewClient(server.URL, slog.Default())

			_, err := client.Submit(context.Background(), sampleGraph())
			require.ErrorIs(t, err, comfy.ErrSubmitRejected)
		})
	}
}

func TestClient_AwaitResultPollsUntilComplete(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/history/job-1", r.URL.Path)

		if polls.Add(1) < 3 {
			_ = json.NewEncoder(w).Encode(map[string]any{})

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"job-1": map[string]any{
				"status": map[string]any{"completed": true, "status_str": "success"},
				"outputs": map[string]any{
					"9": map[string]any{
						"images": []any{
							map[string]any{"filename": "out_00001.png", "subfolder": "", "type": "output"},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	client := comfy.NewClient(server.URL, slog.Default())

	ref, err := client.AwaitResult(context.Background(), "job-1", time.Millisecond, time.Second)
	require.NoError(t, err)
	require.NotNil(t, ref)

	assert.Equal(t, "job-1", ref.JobID)
	require.Len(t, ref.Outputs, 1)
	assert.Equal(t, "out_00001.png", ref.Outputs[0].Filename)
	assert.Equal(t, "9", ref.Outputs[0].NodeID)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestClient_AwaitResultTimesOut(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	client := comfy.NewClient(server.URL, slog.Default())

	_, err := client.AwaitResult(context.Background(), "job-1", time.Millisecond, 20*time.Millisecond)
	require.ErrorIs(t, err, comfy.ErrPollTimeout)
}

func TestClient_AwaitResultHonorsCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	client := comfy.NewClient(server.URL, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.AwaitResult(ctx, "job-1", 5*time.Millisecond, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_AwaitResultJobFailed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"job-1": map[string]any{
				"status": map[string]any{"completed": false, "status_str": "error"},
			},
		})
	}))
	defer server.Close()

	client := comfy.NewClient(server.URL, slog.Default())

	_, err := client.AwaitResult(context.Background(), "job-1", time.Millisecond, time.Second)
	require.ErrorIs(t, err, comfy.ErrJobFailed)
}
