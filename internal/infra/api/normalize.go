package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"agentctl/internal/domain"
	"agentctl/internal/infra/telemetry"
)

// User-facing messages. The status table is fixed; a server-supplied
// detail/message/error field always wins over it.
const (
	MsgTimeout = "Request timed out. Please try again."
	MsgNetwork = "Unable to reach the platform. Check your connection and the configured endpoint."
	MsgGeneric = "The request could not be completed. Please try again."
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request. Check the provided values and try again.",
	http.StatusUnauthorized:        "Authentication required. Please log in again.",
	http.StatusForbidden:           "You do not have permission to perform this action.",
	http.StatusNotFound:            "The requested resource was not found.",
	http.StatusConflict:            "The resource was modified by someone else. Refresh and try again.",
	http.StatusUnprocessableEntity: "The request could not be processed. Check the provided values.",
	http.StatusTooManyRequests:     "Too many requests. Please slow down and try again shortly.",
	http.StatusInternalServerError: "The platform encountered an internal error. Please try again later.",
	http.StatusBadGateway:          "The platform is temporarily unreachable. Please try again later.",
	http.StatusServiceUnavailable:  "The platform is temporarily unavailable. Please try again later.",
	http.StatusGatewayTimeout:      "The platform took too long to respond. Please try again later.",
}

// SessionClearer removes persisted login state after an authentication
// failure. session.Store satisfies it.
type SessionClearer interface {
	Clear() error
}

// Normalizer converts every transport failure into a *domain.Error with a
// non-empty FriendlyMessage, and performs the platform-wide side effects for
// specific statuses. It runs exactly once per failed call, before any caller
// sees the error.
type Normalizer struct {
	logger        *zap.Logger
	sessions      SessionClearer
	onAuthExpired func()
	authFired     atomic.Bool
}

type NormalizerOptions struct {
	Logger        *zap.Logger
	Sessions      SessionClearer
	OnAuthExpired func()
}

func NewNormalizer(opts NormalizerOptions) *Normalizer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		logger:        logger.Named("normalize"),
		sessions:      opts.Sessions,
		onAuthExpired: opts.OnAuthExpired,
	}
}

// ResetGuard re-arms the one-shot auth-expired handler.
func (n *Normalizer) ResetGuard() {
	n.authFired.Store(false)
}

// Normalize shapes a failed call into a *domain.Error. Either resp is
// non-nil (server rejected the request) or transportErr is non-nil (nothing
// reached the client). The original cause stays reachable via Unwrap so
// callers keep the rejection shape for chaining.
func (n *Normalizer) Normalize(op, resource string, resp *http.Response, body []byte, transportErr error) *domain.Error {
	if resp == nil {
		return n.normalizeTransport(op, transportErr)
	}
	return n.normalizeResponse(op, resource, resp, body)
}

func (n *Normalizer) normalizeTransport(op string, err error) *domain.Error {
	if isTimeout(err) {
		normalized := domain.E(domain.CodeTimeout, op, "", err)
		normalized.FriendlyMessage = MsgTimeout
		return normalized
	}
	normalized := domain.E(domain.CodeNetwork, op, "", err)
	normalized.FriendlyMessage = MsgNetwork
	return normalized
}

func (n *Normalizer) normalizeResponse(op, resource string, resp *http.Response, body []byte) *domain.Error {
	status := resp.StatusCode

	message := serverMessage(body)
	if message == "" {
		message = statusMessages[status]
	}
	if message == "" {
		message = MsgGeneric
	}

	normalized := &domain.Error{
		Code:            codeForStatus(status),
		Op:              op,
		Message:         strings.ToLower(http.StatusText(status)),
		FriendlyMessage: message,
		HTTPStatus:      status,
	}

	switch status {
	case http.StatusUnauthorized:
		// Auth endpoints handle their own failures; clearing the session
		// because a login attempt was rejected would be wrong, and firing
		// the expired handler there would loop.
		if resource != domain.ResourceAuth {
			n.expireSession(op)
		}
	case http.StatusForbidden:
		n.logger.Warn("access denied",
			telemetry.EventField(telemetry.EventAccessDenied),
			telemetry.ResourceField(resource),
			zap.String("op", op),
		)
	case http.StatusTooManyRequests:
		normalized.RetryAfterSeconds = retryAfterSeconds(resp.Header.Get("Retry-After"))
	}

	return normalized
}

func (n *Normalizer) expireSession(op string) {
	if n.sessions != nil {
		if err := n.sessions.Clear(); err != nil {
			n.logger.Warn("failed to clear session", zap.String("op", op), zap.Error(err))
		} else {
			n.logger.Info("session cleared",
				telemetry.EventField(telemetry.EventSessionCleared),
				zap.String("op", op),
			)
		}
	}
	// One-shot: repeated 401s (background polls included) must not trigger
	// repeated redirects.
	if n.onAuthExpired != nil && n.authFired.CompareAndSwap(false, true) {
		n.onAuthExpired()
	}
}

// serverMessage extracts a server-supplied message, checked in order:
// detail, message, error, then the raw string body.
func serverMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			raw, ok := fields[key]
			if !ok {
				continue
			}
			var value string
			if err := json.Unmarshal(raw, &value); err == nil && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
		return ""
	}

	// A bare JSON string body counts as a message.
	var value string
	if err := json.Unmarshal(body, &value); err == nil {
		return strings.TrimSpace(value)
	}

	// Raw text bodies are used as-is when they are short enough to be a
	// message rather than an HTML error page.
	if len(trimmed) <= maxRawBodyMessage && !strings.HasPrefix(trimmed, "<") {
		return trimmed
	}
	return ""
}

const maxRawBodyMessage = 512

func codeForStatus(status int) domain.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.CodeInvalidArgument
	case http.StatusUnauthorized:
		return domain.CodeUnauthenticated
	case http.StatusForbidden:
		return domain.CodePermissionDenied
	case http.StatusNotFound:
		return domain.CodeNotFound
	case http.StatusConflict:
		return domain.CodeConflict
	case http.StatusTooManyRequests:
		return domain.CodeRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.CodeUnavailable
	default:
		return domain.CodeInternal
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// Gateways in front of the platform surface aborted upstream calls with
	// this code in the error text.
	return strings.Contains(strings.ToUpper(err.Error()), "ECONNABORTED")
}

func retryAfterSeconds(header string) int {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return 0
	}
	seconds, err := strconv.Atoi(trimmed)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
