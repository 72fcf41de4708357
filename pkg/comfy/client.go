// Package comfy is the remote execution client: it queues a mutated graph
// on a ComfyUI-compatible service and polls for the result reference. The
// engine itself never executes graphs.
package comfy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stationml/gantry/pkg/models"
)

var (
	// ErrSubmitRejected is returned when the remote service refuses the
	// submitted graph.
	ErrSubmitRejected = errors.New("remote service rejected the graph")

	// ErrPollTimeout is returned when a job does not complete within the
	// polling budget.
	ErrPollTimeout = errors.New("timed out waiting for job completion")

	// ErrJobFailed is returned when the remote service reports the job as
	// failed.
	ErrJobFailed = errors.New("remote job failed")
)

// Output is one artifact produced by a completed job.
type Output struct {
	NodeID    string `json:"node_id"`
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder,omitempty"`
	Type      string `json:"type,omitempty"`
}

// ResultRef references the outcome of a completed remote job.
type ResultRef struct {
	JobID   string   `json:"job_id"`
	Outputs []Output `json:"outputs"`
}

// Client talks to one ComfyUI-compatible endpoint. A single client
// identity is kept for the process lifetime.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		clientID:   uuid.NewString(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type submitRequest struct {
	Prompt   map[string]any `json:"prompt"`
	ClientID string         `json:"client_id"`
}

type submitResponse struct {
	PromptID string `json:"prompt_id"`
	Error    any    `json:"error,omitempty"`
}

// Submit queues the graph for execution and returns the job id.
func (c *Client) Submit(ctx context.Context, g *models.Graph) (string, error) {
	body, err := json.Marshal(submitRequest{Prompt: g.KeyedNodes(), ClientID: c.clientID})
	if err != nil {
		return "", fmt.Errorf("failed to encode graph: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prompt", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create submit request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read submit response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrSubmitRejected, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed submitResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmitRejected, parsed.Error)
	}

	if parsed.PromptID == "" {
		return "", fmt.Errorf("%w: response carried no job id", ErrSubmitRejected)
	}

	c.logger.Debug("Submitted graph for execution", "graph", g.Name, "job_id", parsed.PromptID)

	return parsed.PromptID, nil
}

// AwaitResult polls the job history until the job completes, the timeout
// budget is exhausted, or the caller cancels. The deadline is re-checked
// before every poll; cancellation is best-effort and does not cancel the
// remote job itself.
func (c *Client) AwaitResult(ctx context.Context, jobID string, interval, timeout time.Duration) (*ResultRef, error) {
	deadline := time.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: job %s after %s", ErrPollTimeout, jobID, timeout)
		}

		ref, done, err := c.pollHistory(ctx, jobID)
		if err != nil {
			return nil, err
		}

		if done {
			return ref, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

type historyStatus struct {
	StatusStr string `json:"status_str"`
	Completed bool   `json:"completed"`
}

type historyEntry struct {
	Status  historyStatus             `json:"status"`
	Outputs map[string]map[string]any `json:"outputs"`
}

func (c *Client) pollHistory(ctx context.Context, jobID string) (*ResultRef, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+jobID, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create poll request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("poll request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("poll request returned status %d", resp.StatusCode)
	}

	var history map[string]historyEntry
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, false, fmt.Errorf("failed to decode poll response: %w", err)
	}

	entry, ok := history[jobID]
	if !ok {
		return nil, false, nil
	}

	if entry.Status.StatusStr == "error" {
		return nil, false, fmt.Errorf("%w: job %s", ErrJobFailed, jobID)
	}

	if !entry.Status.Completed && len(entry.Outputs) == 0 {
		return nil, false, nil
	}

	return &ResultRef{JobID: jobID, Outputs: collectOutputs(entry.Outputs)}, true, nil
}

func collectOutputs(outputs map[string]map[string]any) []Output {
	collected := make([]Output, 0)

	for nodeID, nodeOutputs := range outputs {
		images, ok := nodeOutputs["images"].([]any)
		if !ok {
			continue
		}

		for _, image := range images {
			entry, ok := image.(map[string]any)
			if !ok {
				continue
			}

			out := Output{NodeID: nodeID}
			out.Filename, _ = entry["filename"].(string)
			out.Subfolder, _ = entry["subfolder"].(string)
			out.Type, _ = entry["type"].(string)

			if out.Filename != "" {
				collected = append(collected, out)
			}
		}
	}

	return collected
}
