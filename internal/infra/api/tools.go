package api

import (
	"context"
	"encoding/json"
	"net/http"

	"agentctl/internal/domain"
)

// ToolInput is the create/update payload for a tool. Parameters must be a
// valid JSON Schema; validate with the schema package before submitting.
type ToolInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Integration string          `json:"integration,omitempty"`
}

func (c *Client) ListTools(ctx context.Context, opts domain.ListOptions) ([]domain.Tool, error) {
	var tools []domain.Tool
	err := c.do(ctx, domain.ResourceTools, "api.ListTools", http.MethodGet, "/api/v1/tools", listQuery(opts), nil, &tools)
	return tools, err
}

func (c *Client) GetTool(ctx context.Context, id string) (domain.Tool, error) {
	var tool domain.Tool
	err := c.do(ctx, domain.ResourceTools, "api.GetTool", http.MethodGet, "/api/v1/tools/"+id, nil, nil, &tool)
	return tool, err
}

func (c *Client) CreateTool(ctx context.Context, input ToolInput) (domain.Tool, error) {
	var tool domain.Tool
	err := c.do(ctx, domain.ResourceTools, "api.CreateTool", http.MethodPost, "/api/v1/tools", nil, input, &tool)
	return tool, err
}

func (c *Client) UpdateTool(ctx context.Context, id string, input ToolInput) (domain.Tool, error) {
	var tool domain.Tool
	err := c.do(ctx, domain.ResourceTools, "api.UpdateTool", http.MethodPut, "/api/v1/tools/"+id, nil, input, &tool)
	return tool, err
}

func (c *Client) DeleteTool(ctx context.Context, id string) error {
	return c.do(ctx, domain.ResourceTools, "api.DeleteTool", http.MethodDelete, "/api/v1/tools/"+id, nil, nil, nil)
}
