package api

import (
	"context"
	"net/http"

	"agentctl/internal/domain"
)

func (c *Client) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	var summary domain.DashboardSummary
	err := c.do(ctx, domain.ResourceDashboard, "api.DashboardSummary", http.MethodGet, "/api/v1/dashboard/summary", nil, nil, &summary)
	return summary, err
}
