// Package api is the typed HTTP client for the platform REST API. Each
// resource method issues exactly one call: no retries, no caching, no
// side effects beyond the call itself. Retry and staleness policy belong
// to the query cache layer; failure shaping belongs to the Normalizer,
// which is applied once here at the client boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"agentctl/internal/domain"
	"agentctl/internal/infra/telemetry"
)

// TokenSource supplies the bearer credential read before each request.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed-credential TokenSource for tests and scripting.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	normalizer *Normalizer
	logger     *zap.Logger
	metrics    telemetry.Metrics
}

type ClientOptions struct {
	// Endpoint is the platform base URL, e.g. https://platform.example.com.
	Endpoint string
	// Timeout bounds each call; defaults to domain.DefaultRequestTimeout.
	Timeout time.Duration
	// Tokens supplies the bearer credential; nil sends unauthenticated calls.
	Tokens TokenSource
	// Sessions is cleared when the platform rejects the credential.
	Sessions SessionClearer
	// OnAuthExpired runs at most once after a 401 until the guard is reset.
	OnAuthExpired func()
	Logger        *zap.Logger
	Metrics       telemetry.Metrics
	// Transport overrides the base RoundTripper; tests use this.
	Transport http.RoundTripper
}

func NewClient(opts ClientOptions) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("endpoint must be a valid http(s) URL: %q", endpoint)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics telemetry.Metrics = opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	// The decorator chain is assembled once, here, so every call carries a
	// request ID and the current bearer credential. Order matters: the
	// request ID decorator runs outermost so auth failures still log with
	// an ID attached.
	var transport http.RoundTripper = &authRoundTripper{base: base, tokens: opts.Tokens}
	transport = &requestIDRoundTripper{base: transport}

	return &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		normalizer: NewNormalizer(NormalizerOptions{
			Logger:        logger,
			Sessions:      opts.Sessions,
			OnAuthExpired: opts.OnAuthExpired,
		}),
		logger:  logger.Named("api"),
		metrics: metrics,
	}, nil
}

// ResetAuthGuard re-arms the one-shot 401 handler, typically after a fresh
// login succeeds.
func (c *Client) ResetAuthGuard() {
	c.normalizer.ResetGuard()
}

// do issues one request and decodes the JSON response into out (when out is
// non-nil). Every failure path funnels through the normalizer exactly once.
func (c *Client) do(ctx context.Context, resource, op, method, path string, query url.Values, in, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return domain.E(domain.CodeInvalidArgument, op, "encode request body", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return domain.E(domain.CodeInvalidArgument, op, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		normalized := c.normalizer.Normalize(op, resource, nil, nil, err)
		c.metrics.ObserveRequest(resource, time.Since(started), 0, normalized)
		c.logFailure(req, resource, op, 0, normalized)
		return normalized
	}
	defer func() { _ = resp.Body.Close() }()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		normalized := c.normalizer.Normalize(op, resource, resp, payload, nil)
		c.metrics.ObserveRequest(resource, time.Since(started), resp.StatusCode, normalized)
		c.logFailure(req, resource, op, resp.StatusCode, normalized)
		return normalized
	}
	if readErr != nil {
		// The client timeout covers body reads, so a stall here is a
		// transport failure like any other and gets the same shaping.
		normalized := c.normalizer.Normalize(op, resource, nil, nil, readErr)
		c.metrics.ObserveRequest(resource, time.Since(started), resp.StatusCode, normalized)
		c.logFailure(req, resource, op, resp.StatusCode, normalized)
		return normalized
	}
	c.metrics.ObserveRequest(resource, time.Since(started), resp.StatusCode, nil)
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return domain.E(domain.CodeInternal, op, "decode response body", err)
	}
	return nil
}

const maxResponseBytes = 8 << 20

func (c *Client) logFailure(req *http.Request, resource, op string, status int, err *domain.Error) {
	c.logger.Debug("request failed",
		telemetry.EventField(telemetry.EventRequestFailure),
		telemetry.ResourceField(resource),
		telemetry.HTTPStatusField(status),
		telemetry.RequestIDField(req.Header.Get(telemetry.RequestIDHeader)),
		zap.String("op", op),
		zap.String("code", string(err.Code)),
	)
}

type authRoundTripper struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return t.base.RoundTrip(req)
}

type requestIDRoundTripper struct {
	base http.RoundTripper
}

func (t *requestIDRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(telemetry.RequestIDHeader) == "" {
		requestID, ok := telemetry.RequestIDFromContext(req.Context())
		if !ok {
			requestID = telemetry.NewRequestID()
		}
		req.Header.Set(telemetry.RequestIDHeader, requestID)
	}
	return t.base.RoundTrip(req)
}

func listQuery(opts domain.ListOptions) url.Values {
	query := url.Values{}
	if opts.AgentID != "" {
		query.Set("agentId", opts.AgentID)
	}
	if opts.Status != "" {
		query.Set("status", string(opts.Status))
	}
	if opts.Label != "" {
		query.Set("label", opts.Label)
	}
	if opts.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	return query
}
