package errors

// Transport-specific helpers for classifying listing API fetch failures
// into retry semantics

import (
	"context"
	stderrs "errors"
	"net"
	"strings"
)

// IsRetryable reports whether an error represents a transient condition
// worth retrying. It handles both our coded errors and the raw transport
// errors seen before any response exists
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Caller cancellation is never worth retrying
	if stderrs.Is(err, context.Canceled) {
		return false
	}

	// Coded errors carry their own retry classification. This runs before
	// any context sentinel test: an http.Client timeout matches
	// context.DeadlineExceeded through errors.Is yet is a transport
	// failure, and the transport layer already coded it Unavailable
	if e, ok := As(err); ok {
		switch e.Code() {
		case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
			return true
		case ErrorCodeUnknown:
			// keep inspecting the cause below
		default:
			return false
		}
	}

	// Unwrap to the root cause so we can see the transport error
	root := Root(err)

	// A bare deadline sentinel is the caller's own deadline expiring, not
	// a transport timeout; transport timeouts arrive wrapped in a
	// net.Error carrier and never unwrap to the sentinel itself
	if root == context.DeadlineExceeded {
		return false
	}

	var nerr net.Error
	if stderrs.As(root, &nerr) && nerr.Timeout() {
		return true
	}

	// Fallback: text patterns emitted by net/http on dropped or refused connections
	s := strings.ToLower(root.Error())
	switch {
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "connection reset"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "i/o timeout"),
		strings.Contains(s, "no such host"):
		return true
	default:
		return false
	}
}
