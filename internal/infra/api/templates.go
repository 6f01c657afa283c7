package api

import (
	"context"
	"net/http"

	"agentctl/internal/domain"
)

type TemplateInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Model        string   `json:"model,omitempty"`
	SystemPrompt string   `json:"systemPrompt,omitempty"`
	ToolIDs      []string `json:"toolIds,omitempty"`
}

func (c *Client) ListTemplates(ctx context.Context, opts domain.ListOptions) ([]domain.Template, error) {
	var templates []domain.Template
	err := c.do(ctx, domain.ResourceTemplates, "api.ListTemplates", http.MethodGet, "/api/v1/templates", listQuery(opts), nil, &templates)
	return templates, err
}

func (c *Client) GetTemplate(ctx context.Context, id string) (domain.Template, error) {
	var template domain.Template
	err := c.do(ctx, domain.ResourceTemplates, "api.GetTemplate", http.MethodGet, "/api/v1/templates/"+id, nil, nil, &template)
	return template, err
}

func (c *Client) CreateTemplate(ctx context.Context, input TemplateInput) (domain.Template, error) {
	var template domain.Template
	err := c.do(ctx, domain.ResourceTemplates, "api.CreateTemplate", http.MethodPost, "/api/v1/templates", nil, input, &template)
	return template, err
}

func (c *Client) UpdateTemplate(ctx context.Context, id string, input TemplateInput) (domain.Template, error) {
	var template domain.Template
	err := c.do(ctx, domain.ResourceTemplates, "api.UpdateTemplate", http.MethodPut, "/api/v1/templates/"+id, nil, input, &template)
	return template, err
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.do(ctx, domain.ResourceTemplates, "api.DeleteTemplate", http.MethodDelete, "/api/v1/templates/"+id, nil, nil, nil)
}
