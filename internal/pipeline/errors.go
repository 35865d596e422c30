package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure. The HTTP layer maps kinds to status
// codes; internal stages never render user-facing messages themselves.
type Kind string

const (
	KindInvalidRequest      Kind = "invalid_request"
	KindForbidden           Kind = "forbidden"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindTimeout             Kind = "timeout"
	KindContentBlocked      Kind = "content_blocked"
	KindModerationError     Kind = "moderation_unavailable"
	KindUpstreamFetch       Kind = "upstream_fetch_failed"
	KindInternal            Kind = "internal"
)

// Error is the failure value every pipeline stage returns. Message is opaque
// and safe to surface; the wrapped error stays server-side.
type Error struct {
	Kind    Kind
	Message string
	Labels  []string
	Err     error
}

func (e *Error) Error() string {
	if len(e.Labels) > 0 {
		return fmt.Sprintf("%s: %s [%s]", e.Kind, e.Message, strings.Join(e.Labels, ","))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errf builds an Error with a formatted message.
func Errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapErr builds an Error that keeps the underlying cause for logging.
func WrapErr(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, or KindInternal when err is not a
// pipeline error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
