package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op code and message",
			err:  &Error{Code: CodeNotFound, Op: "api.GetAgent", Message: "not found"},
			want: "api.GetAgent: NOT_FOUND: not found",
		},
		{
			name: "message falls back to cause",
			err:  &Error{Code: CodeNetwork, Op: "api.ListAgents", Cause: errors.New("dial refused")},
			want: "api.ListAgents: NETWORK: dial refused",
		},
		{
			name: "no op",
			err:  &Error{Code: CodeInternal, Message: "boom"},
			want: "INTERNAL: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := E(CodeTimeout, "api.ListAgents", "", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), cause)
}

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{CodeTimeout, true},
		{CodeNetwork, true},
		{CodeUnavailable, true},
		{CodeRateLimited, true},
		{CodeNotFound, false},
		{CodeInvalidArgument, false},
		{CodeUnauthenticated, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, (&Error{Code: tt.code}).Retryable())
		})
	}
}

func TestCodeFrom(t *testing.T) {
	code, ok := CodeFrom(&Error{Code: CodeConflict})
	assert.True(t, ok)
	assert.Equal(t, CodeConflict, code)

	code, ok = CodeFrom(fmt.Errorf("outer: %w", &Error{Code: CodeNotFound}))
	assert.True(t, ok)
	assert.Equal(t, CodeNotFound, code)

	code, ok = CodeFrom(ErrSessionExpired)
	assert.True(t, ok)
	assert.Equal(t, CodeUnauthenticated, code)

	_, ok = CodeFrom(errors.New("plain"))
	assert.False(t, ok)

	_, ok = CodeFrom(nil)
	assert.False(t, ok)
}

func TestFriendlyMessageFrom(t *testing.T) {
	err := &Error{Code: CodeNotFound, FriendlyMessage: "The requested resource was not found."}
	assert.Equal(t, "The requested resource was not found.", FriendlyMessageFrom(err))
	assert.Equal(t, "The requested resource was not found.", FriendlyMessageFrom(fmt.Errorf("outer: %w", err)))

	plain := errors.New("raw failure")
	assert.Equal(t, "raw failure", FriendlyMessageFrom(plain))
	assert.Empty(t, FriendlyMessageFrom(nil))
}

func TestAnyInProgress(t *testing.T) {
	tests := []struct {
		name       string
		executions []Execution
		want       bool
	}{
		{"empty", nil, false},
		{"all settled", []Execution{{Status: ExecutionCompleted}, {Status: ExecutionCancelled}}, false},
		{"one running", []Execution{{Status: ExecutionCompleted}, {Status: ExecutionRunning}}, true},
		{"one pending", []Execution{{Status: ExecutionPending}}, true},
		{"failed is settled", []Execution{{Status: ExecutionFailed}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnyInProgress(tt.executions))
		})
	}
}
