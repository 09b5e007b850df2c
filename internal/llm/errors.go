package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a provider failure into the small closed set the pipeline
// cares about. All kinds are fatal at this layer; there is no internal retry.
type Kind string

// Failure kinds.
const (
	KindRateLimit  Kind = "rate_limit"
	KindAuth       Kind = "auth"
	KindConnection Kind = "connection"
	KindProvider   Kind = "provider"
	KindUnknown    Kind = "unknown"
)

// Error is the single error type surfaced by every client. The original
// provider error is preserved in Cause for diagnostics.
type Error struct {
	Kind     Kind
	Provider Provider
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm %s error (%s): %s: %v", e.Kind, e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm %s error (%s): %s", e.Kind, e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// classifyStatus maps an HTTP status code from a provider API to a Kind.
func classifyStatus(code int) Kind {
	switch {
	case code == 429:
		return KindRateLimit
	case code == 401 || code == 403:
		return KindAuth
	case code >= 400:
		return KindProvider
	default:
		return KindUnknown
	}
}

// isConnectionError reports whether err looks like a transport failure
// rather than a provider-side rejection.
func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
