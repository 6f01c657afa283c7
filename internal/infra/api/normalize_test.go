package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentctl/internal/domain"
)

func fakeResponse(status int, body string, headers map[string]string) (*http.Response, []byte) {
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
	}
	for key, value := range headers {
		resp.Header.Set(key, value)
	}
	return resp, []byte(body)
}

type recordingClearer struct {
	calls int
	err   error
}

func (c *recordingClearer) Clear() error {
	c.calls++
	return c.err
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return false }

func TestNormalize_ServerMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "detail wins over message and error",
			body: `{"detail":"agent quota exceeded","message":"other","error":"another"}`,
			want: "agent quota exceeded",
		},
		{
			name: "message wins over error",
			body: `{"message":"tool name already taken","error":"conflict"}`,
			want: "tool name already taken",
		},
		{
			name: "error field alone",
			body: `{"error":"integration disabled"}`,
			want: "integration disabled",
		},
		{
			name: "bare string body",
			body: `"upstream rejected the call"`,
			want: "upstream rejected the call",
		},
		{
			name: "short raw text body",
			body: "service restarting",
			want: "service restarting",
		},
		{
			name: "object without known fields falls back to status table",
			body: `{"code":42}`,
			want: statusMessages[http.StatusBadRequest],
		},
		{
			name: "empty detail falls through to message",
			body: `{"detail":"","message":"named message"}`,
			want: "named message",
		},
		{
			name: "html body falls back to status table",
			body: "<html><body>Bad Request</body></html>",
			want: statusMessages[http.StatusBadRequest],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(NormalizerOptions{})
			resp, body := fakeResponse(http.StatusBadRequest, tt.body, nil)

			got := n.Normalize("api.CreateAgent", domain.ResourceAgents, resp, body, nil)

			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.FriendlyMessage)
			assert.Equal(t, domain.CodeInvalidArgument, got.Code)
		})
	}
}

func TestNormalize_StatusTableFallback(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
		code   domain.ErrorCode
	}{
		{"not found", http.StatusNotFound, "The requested resource was not found.", domain.CodeNotFound},
		{"conflict", http.StatusConflict, "The resource was modified by someone else. Refresh and try again.", domain.CodeConflict},
		{"service unavailable", http.StatusServiceUnavailable, "The platform is temporarily unavailable. Please try again later.", domain.CodeUnavailable},
		{"unmapped status uses generic message", http.StatusTeapot, MsgGeneric, domain.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(NormalizerOptions{})
			resp, body := fakeResponse(tt.status, "", nil)

			got := n.Normalize("api.GetAgent", domain.ResourceAgents, resp, body, nil)

			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.FriendlyMessage)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}
}

func TestNormalize_TransportClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code domain.ErrorCode
		want string
	}{
		{"deadline exceeded", context.DeadlineExceeded, domain.CodeTimeout, MsgTimeout},
		{"net timeout", timeoutNetError{}, domain.CodeTimeout, MsgTimeout},
		{"gateway abort code in text", errors.New("request failed: ECONNABORTED"), domain.CodeTimeout, MsgTimeout},
		{"connection refused", errors.New("dial tcp: connection refused"), domain.CodeNetwork, MsgNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(NormalizerOptions{})

			got := n.Normalize("api.ListAgents", domain.ResourceAgents, nil, nil, tt.err)

			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.want, got.FriendlyMessage)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestNormalize_AuthExpiredFiresOnce(t *testing.T) {
	clearer := &recordingClearer{}
	fired := 0
	n := NewNormalizer(NormalizerOptions{
		Sessions:      clearer,
		OnAuthExpired: func() { fired++ },
	})

	resp, body := fakeResponse(http.StatusUnauthorized, "", nil)
	_ = n.Normalize("api.ListAgents", domain.ResourceAgents, resp, body, nil)
	resp, body = fakeResponse(http.StatusUnauthorized, "", nil)
	_ = n.Normalize("api.ListTools", domain.ResourceTools, resp, body, nil)

	assert.Equal(t, 2, clearer.calls, "every 401 clears the stored session")
	assert.Equal(t, 1, fired, "the expired handler runs once until reset")

	n.ResetGuard()
	resp, body = fakeResponse(http.StatusUnauthorized, "", nil)
	_ = n.Normalize("api.ListAgents", domain.ResourceAgents, resp, body, nil)
	assert.Equal(t, 2, fired)
}

func TestNormalize_LoginFailureSkipsSessionSideEffects(t *testing.T) {
	clearer := &recordingClearer{}
	fired := 0
	n := NewNormalizer(NormalizerOptions{
		Sessions:      clearer,
		OnAuthExpired: func() { fired++ },
	})

	resp, body := fakeResponse(http.StatusUnauthorized, `{"detail":"bad credentials"}`, nil)
	got := n.Normalize("api.Login", domain.ResourceAuth, resp, body, nil)

	require.NotNil(t, got)
	assert.Equal(t, domain.CodeUnauthenticated, got.Code)
	assert.Equal(t, "bad credentials", got.FriendlyMessage)
	assert.Zero(t, clearer.calls)
	assert.Zero(t, fired)
}

func TestNormalize_RetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"integer seconds", "12", 12},
		{"missing header", "", 0},
		{"http date is ignored", "Wed, 21 Oct 2026 07:28:00 GMT", 0},
		{"negative is ignored", "-5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(NormalizerOptions{})
			headers := map[string]string{}
			if tt.header != "" {
				headers["Retry-After"] = tt.header
			}
			resp, body := fakeResponse(http.StatusTooManyRequests, "", headers)

			got := n.Normalize("api.ListAgents", domain.ResourceAgents, resp, body, nil)

			require.NotNil(t, got)
			assert.Equal(t, domain.CodeRateLimited, got.Code)
			assert.Equal(t, tt.want, got.RetryAfterSeconds)
			assert.True(t, got.Retryable())
		})
	}
}
