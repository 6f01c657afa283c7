package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentctl/internal/domain"
	"agentctl/internal/infra/telemetry"
)

func newTestClient(t *testing.T, handler http.Handler, opts ClientOptions) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.Endpoint = server.URL
	client, err := NewClient(opts)
	require.NoError(t, err)
	return client, server
}

func TestNewClient_RejectsBadEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"empty", ""},
		{"no scheme", "platform.example.com"},
		{"wrong scheme", "ftp://platform.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(ClientOptions{Endpoint: tt.endpoint})
			assert.Error(t, err)
		})
	}
}

func TestClient_SetsAuthAndRequestIDHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(telemetry.RequestIDHeader)
		_ = json.NewEncoder(w).Encode([]domain.Agent{})
	})

	client, _ := newTestClient(t, handler, ClientOptions{Tokens: StaticToken("secret-token")})

	_, err := client.ListAgents(context.Background(), domain.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_PropagatesContextRequestID(t *testing.T) {
	var gotRequestID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(telemetry.RequestIDHeader)
		_ = json.NewEncoder(w).Encode(domain.Agent{})
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	ctx := telemetry.WithRequestID(context.Background(), "req-123")
	_, err := client.GetAgent(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "req-123", gotRequestID)
}

func TestClient_OneCallPerMethod(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	_, err := client.ListAgents(context.Background(), domain.ListOptions{})
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load(), "failed calls are never retried here")

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeUnavailable, domainErr.Code)
}

func TestClient_ListQueryEncoding(t *testing.T) {
	var gotQuery url.Values
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode([]domain.Execution{})
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	_, err := client.ListExecutions(context.Background(), domain.ListOptions{
		AgentID: "a1",
		Status:  domain.ExecutionRunning,
		Limit:   25,
	})
	require.NoError(t, err)

	want := url.Values{
		"agentId": {"a1"},
		"status":  {"running"},
		"limit":   {"25"},
	}
	if diff := cmp.Diff(want, gotQuery); diff != "" {
		t.Fatalf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_DecodesResponse(t *testing.T) {
	want := domain.Agent{ID: "a1", Name: "triage", Model: "gpt-4o", Enabled: true}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/agents/a1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(want)
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	got, err := client.GetAgent(context.Background(), "a1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("agent mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_TimeoutIsNormalized(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	client, _ := newTestClient(t, handler, ClientOptions{Timeout: 20 * time.Millisecond})

	_, err := client.ListAgents(context.Background(), domain.ListOptions{})
	require.Error(t, err)

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeTimeout, domainErr.Code)
	assert.Equal(t, MsgTimeout, domainErr.FriendlyMessage)
}

func TestClient_StalledBodyIsNormalized(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})

	client, _ := newTestClient(t, handler, ClientOptions{Timeout: 50 * time.Millisecond})

	_, err := client.ListAgents(context.Background(), domain.ListOptions{})
	require.Error(t, err)

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeTimeout, domainErr.Code, "the client timeout covers body reads")
	assert.Equal(t, MsgTimeout, domainErr.FriendlyMessage)
}

func TestClient_DeleteSendsNoBodyAndAcceptsNoContent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	require.NoError(t, client.DeleteAgent(context.Background(), "a1"))
}
