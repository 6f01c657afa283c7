package api

import (
	"context"
	"net/http"

	"agentctl/internal/domain"
)

// IntegrationInput is the create/update payload for an external-tool
// connection. Credential is write-only: the API never echoes it back.
type IntegrationInput struct {
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Endpoint   string            `json:"endpoint,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Credential string            `json:"credential,omitempty"`
	Enabled    bool              `json:"enabled"`
}

func (c *Client) ListIntegrations(ctx context.Context, opts domain.ListOptions) ([]domain.Integration, error) {
	var integrations []domain.Integration
	err := c.do(ctx, domain.ResourceIntegrations, "api.ListIntegrations", http.MethodGet, "/api/v1/integrations", listQuery(opts), nil, &integrations)
	return integrations, err
}

func (c *Client) GetIntegration(ctx context.Context, id string) (domain.Integration, error) {
	var integration domain.Integration
	err := c.do(ctx, domain.ResourceIntegrations, "api.GetIntegration", http.MethodGet, "/api/v1/integrations/"+id, nil, nil, &integration)
	return integration, err
}

func (c *Client) CreateIntegration(ctx context.Context, input IntegrationInput) (domain.Integration, error) {
	var integration domain.Integration
	err := c.do(ctx, domain.ResourceIntegrations, "api.CreateIntegration", http.MethodPost, "/api/v1/integrations", nil, input, &integration)
	return integration, err
}

func (c *Client) UpdateIntegration(ctx context.Context, id string, input IntegrationInput) (domain.Integration, error) {
	var integration domain.Integration
	err := c.do(ctx, domain.ResourceIntegrations, "api.UpdateIntegration", http.MethodPut, "/api/v1/integrations/"+id, nil, input, &integration)
	return integration, err
}

func (c *Client) DeleteIntegration(ctx context.Context, id string) error {
	return c.do(ctx, domain.ResourceIntegrations, "api.DeleteIntegration", http.MethodDelete, "/api/v1/integrations/"+id, nil, nil, nil)
}
