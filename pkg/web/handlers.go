// Package web provides the HTTP surface: tool discovery, invocation and
// health endpoints over the invocation service.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stationml/gantry/pkg/services"
	"github.com/stationml/gantry/pkg/tools"
)

type APIHandlers struct {
	toolService *services.Tools
	validator   *validator.Validate
	registry    *tools.Registry
}

func NewAPIHandlers(
	toolService *services.Tools,
	validator *validator.Validate,
	registry *tools.Registry,
) *APIHandlers {
	return &APIHandlers{
		toolService: toolService,
		validator:   validator,
		registry:    registry,
	}
}

// ListTools returns every registered tool with its projected input schema.
func (h *APIHandlers) ListTools(c fiber.Ctx) error {
	return c.JSON(ListToolsResponse{Tools: h.toolService.List(c.Context())})
}

// InvokeTool applies the request arguments to the named tool. Arguments
// are validated against the tool's projected schema before the engine
// runs; requiredness is left to the engine, which reports it as warnings.
func (h *APIHandlers) InvokeTool(c fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return badRequest(c, "Tool name is required")
	}

	var req InvokeToolRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Arguments == nil {
		req.Arguments = map[string]any{}
	}

	summary, err := h.toolService.Describe(c.Context(), name)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := validateArguments(summary.InputSchema, req.Arguments); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.toolService.Invoke(c.Context(), name, req.Arguments)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(InvokeToolResponse{
		Status:   "ok",
		Graph:    result.Graph,
		Result:   result.Result,
		Warnings: result.Warnings,
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.toolService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Gantry API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Gantry API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
