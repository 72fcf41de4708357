package web

import (
	"github.com/stationml/gantry/pkg/comfy"
	"github.com/stationml/gantry/pkg/models"
	"github.com/stationml/gantry/pkg/services"
)

// InvokeToolRequest is the body of POST /tools/:name/invoke.
type InvokeToolRequest struct {
	Arguments map[string]any `json:"arguments"`
}

// InvokeToolResponse reports a successful invocation. Graph is set when no
// remote execution client is configured, Result when one is. A non-empty
// warning list still counts as success: the caller decides whether to
// retry with corrected arguments.
type InvokeToolResponse struct {
	Status   string           `json:"status"`
	Graph    *models.Graph    `json:"graph,omitempty"`
	Result   *comfy.ResultRef `json:"result,omitempty"`
	Warnings []string         `json:"warnings"`
}

// ListToolsResponse is the discovery listing.
type ListToolsResponse struct {
	Tools []services.ToolSummary `json:"tools"`
}
