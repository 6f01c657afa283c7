package api

import (
	"context"
	"net/http"

	"agentctl/internal/domain"
)

type StartExecutionInput struct {
	AgentID   string         `json:"agentId"`
	ToolID    string         `json:"toolId,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

func (c *Client) ListExecutions(ctx context.Context, opts domain.ListOptions) ([]domain.Execution, error) {
	var executions []domain.Execution
	err := c.do(ctx, domain.ResourceExecutions, "api.ListExecutions", http.MethodGet, "/api/v1/executions", listQuery(opts), nil, &executions)
	return executions, err
}

func (c *Client) GetExecution(ctx context.Context, id string) (domain.Execution, error) {
	var execution domain.Execution
	err := c.do(ctx, domain.ResourceExecutions, "api.GetExecution", http.MethodGet, "/api/v1/executions/"+id, nil, nil, &execution)
	return execution, err
}

func (c *Client) StartExecution(ctx context.Context, input StartExecutionInput) (domain.Execution, error) {
	var execution domain.Execution
	err := c.do(ctx, domain.ResourceExecutions, "api.StartExecution", http.MethodPost, "/api/v1/executions", nil, input, &execution)
	return execution, err
}

func (c *Client) CancelExecution(ctx context.Context, id string) (domain.Execution, error) {
	var execution domain.Execution
	err := c.do(ctx, domain.ResourceExecutions, "api.CancelExecution", http.MethodPost, "/api/v1/executions/"+id+"/cancel", nil, nil, &execution)
	return execution, err
}
