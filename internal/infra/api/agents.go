package api

import (
	"context"
	"net/http"

	"agentctl/internal/domain"
)

// AgentInput is the create/update payload for an agent.
type AgentInput struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Model        string            `json:"model"`
	SystemPrompt string            `json:"systemPrompt,omitempty"`
	ToolIDs      []string          `json:"toolIds,omitempty"`
	TemplateID   string            `json:"templateId,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	Enabled      bool              `json:"enabled"`
}

func (c *Client) ListAgents(ctx context.Context, opts domain.ListOptions) ([]domain.Agent, error) {
	var agents []domain.Agent
	err := c.do(ctx, domain.ResourceAgents, "api.ListAgents", http.MethodGet, "/api/v1/agents", listQuery(opts), nil, &agents)
	return agents, err
}

func (c *Client) GetAgent(ctx context.Context, id string) (domain.Agent, error) {
	var agent domain.Agent
	err := c.do(ctx, domain.ResourceAgents, "api.GetAgent", http.MethodGet, "/api/v1/agents/"+id, nil, nil, &agent)
	return agent, err
}

func (c *Client) CreateAgent(ctx context.Context, input AgentInput) (domain.Agent, error) {
	var agent domain.Agent
	err := c.do(ctx, domain.ResourceAgents, "api.CreateAgent", http.MethodPost, "/api/v1/agents", nil, input, &agent)
	return agent, err
}

func (c *Client) UpdateAgent(ctx context.Context, id string, input AgentInput) (domain.Agent, error) {
	var agent domain.Agent
	err := c.do(ctx, domain.ResourceAgents, "api.UpdateAgent", http.MethodPut, "/api/v1/agents/"+id, nil, input, &agent)
	return agent, err
}

func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.do(ctx, domain.ResourceAgents, "api.DeleteAgent", http.MethodDelete, "/api/v1/agents/"+id, nil, nil, nil)
}
