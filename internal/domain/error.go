package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
	CodeInternal         ErrorCode = "INTERNAL"
	CodeUnavailable      ErrorCode = "UNAVAILABLE"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeNetwork          ErrorCode = "NETWORK"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired")
	ErrWatchStopped   = errors.New("watch stopped")
)

// Error is the normalized failure every transport error is converted into
// exactly once, at the client boundary. FriendlyMessage is always non-empty
// after normalization and is safe to surface verbatim; callers never
// re-derive it. The struct is not mutated after construction.
type Error struct {
	Code            ErrorCode
	Op              string
	Message         string
	FriendlyMessage string
	// HTTPStatus is zero when no response reached the client.
	HTTPStatus int
	// RetryAfterSeconds is set from the Retry-After header on 429 responses.
	RetryAfterSeconds int
	Cause             error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Retryable reports whether the caller may reasonably retry the operation.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Code {
	case CodeTimeout, CodeNetwork, CodeUnavailable, CodeRateLimited:
		return true
	default:
		return false
	}
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

// CodeFrom extracts the error code from any error in the chain.
func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrNotLoggedIn), errors.Is(err, ErrSessionExpired):
		return CodeUnauthenticated, true
	default:
		return "", false
	}
}

// FriendlyMessageFrom returns the user-facing message carried by the error
// chain, or the raw error text when the error never passed the normalizer.
func FriendlyMessageFrom(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.FriendlyMessage != "" {
		return domainErr.FriendlyMessage
	}
	return err.Error()
}
