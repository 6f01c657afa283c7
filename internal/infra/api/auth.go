package api

import (
	"context"
	"net/http"

	"agentctl/internal/domain"
)

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  string `json:"user,omitempty"`
}

// Login exchanges credentials for a bearer token. A 401 here means bad
// credentials, not an expired session; the normalizer skips the session
// side effects for the auth resource.
func (c *Client) Login(ctx context.Context, input LoginInput) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, domain.ResourceAuth, "api.Login", http.MethodPost, "/api/v1/auth/login", nil, input, &resp)
	return resp, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, domain.ResourceAuth, "api.Logout", http.MethodPost, "/api/v1/auth/logout", nil, nil, nil)
}
