package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stationml/gantry/pkg/comfy"
	"github.com/stationml/gantry/pkg/injector"
	"github.com/stationml/gantry/pkg/models"
	"github.com/stationml/gantry/pkg/otelhelper"
	"github.com/stationml/gantry/pkg/persistence"
	"github.com/stationml/gantry/pkg/schema"
	"github.com/stationml/gantry/pkg/tools"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExecutionClient queues a graph on a remote execution service and polls
// for a result reference.
type ExecutionClient interface {
	Submit(ctx context.Context, g *models.Graph) (string, error)
	AwaitResult(ctx context.Context, jobID string, interval, timeout time.Duration) (*comfy.ResultRef, error)
}

// Tools serves discovery and invocation over the bound registry. Without
// an execution client, invocations return the mutated graph; with one,
// they return a result reference.
type Tools struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *tools.Registry
	injector    *injector.Injector
	tracer      trace.Tracer

	client       ExecutionClient
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewTools creates the invocation service.
func NewTools(logger *slog.Logger, p persistence.Persistence, registry *tools.Registry, inj *injector.Injector) *Tools {
	return &Tools{
		logger:      logger,
		persistence: p,
		registry:    registry,
		injector:    inj,
		tracer:      otel.Tracer("gantry/services"),
	}
}

// WithExecution configures remote execution. Invocations then submit the
// mutated graph and await a result reference instead of returning the
// graph itself.
func (s *Tools) WithExecution(client ExecutionClient, pollInterval, pollTimeout time.Duration) *Tools {
	s.client = client
	s.pollInterval = pollInterval
	s.pollTimeout = pollTimeout

	return s
}

// WithTracer replaces the default tracer.
func (s *Tools) WithTracer(tracer trace.Tracer) *Tools {
	s.tracer = tracer

	return s
}

// ToolSummary is one entry of a discovery listing.
type ToolSummary struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Provenance  models.Provenance  `json:"provenance"`
	Workflow    string             `json:"workflow,omitempty"`
	InputSchema *models.JSONSchema `json:"input_schema"`
}

// List returns every registered tool with its projected input schema. The
// listing is re-derived on every call and stable across calls.
func (s *Tools) List(_ context.Context) []ToolSummary {
	registered := s.registry.List()
	summaries := make([]ToolSummary, 0, len(registered))

	for _, tool := range registered {
		summaries = append(summaries, summarize(tool))
	}

	return summaries
}

// Describe returns the discovery entry for one tool.
func (s *Tools) Describe(_ context.Context, name string) (ToolSummary, error) {
	tool, ok := s.registry.Get(name)
	if !ok {
		return ToolSummary{}, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}

	return summarize(tool), nil
}

func summarize(tool *models.RegisteredTool) ToolSummary {
	summary := ToolSummary{
		Name:        tool.Definition.Name,
		Description: tool.Definition.Description,
		Provenance:  tool.Provenance,
		InputSchema: schema.ProjectInputSchema(tool.Definition.Fields),
	}

	if tool.Graph != nil {
		summary.Workflow = tool.Graph.Name
	}

	return summary
}

// InvokeResult is the structured outcome of a successful invocation.
// Warnings carry per-field problems that did not abort the invocation.
type InvokeResult struct {
	Graph    *models.Graph    `json:"graph,omitempty"`
	Warnings []string         `json:"warnings"`
	Result   *comfy.ResultRef `json:"result,omitempty"`
}

// Invoke applies the supplied arguments to the tool's graph template and
// either returns the mutated graph or runs it remotely.
func (s *Tools) Invoke(ctx context.Context, name string, args map[string]any) (*InvokeResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "tools.invoke",
		attribute.String(otelhelper.ToolNameKey, name))
	defer span.End()

	tool, ok := s.registry.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrToolNotFound, name)
		otelhelper.SetError(span, err)

		return nil, err
	}

	if tool.Graph == nil {
		err := fmt.Errorf("%w: %q", ErrNoWorkflowBound, name)
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(
		attribute.String(otelhelper.WorkflowNameKey, tool.Graph.Name),
		attribute.String(otelhelper.ProvenanceKey, string(tool.Provenance)),
	)

	mutated, warnings := s.injector.Apply(tool.Graph, tool.Definition, args)
	span.SetAttributes(attribute.Int(otelhelper.WarningCountKey, len(warnings)))

	if len(warnings) > 0 {
		s.logger.Warn("Invocation completed with warnings", "tool", name, "warnings", warnings)
	}

	if s.client == nil {
		return &InvokeResult{Graph: mutated, Warnings: warnings}, nil
	}

	jobID, err := s.client.Submit(ctx, mutated)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to submit workflow %q: %w", tool.Graph.Name, err)
	}

	span.SetAttributes(attribute.String(otelhelper.JobIDKey, jobID))

	ref, err := s.client.AwaitResult(ctx, jobID, s.pollInterval, s.pollTimeout)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed waiting for job %s: %w", jobID, err)
	}

	return &InvokeResult{Warnings: warnings, Result: ref}, nil
}

// HealthCheck checks the health of the persistence layer.
func (s *Tools) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}
