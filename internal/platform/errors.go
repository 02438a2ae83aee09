package platform

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories the pipeline reports.
// Handlers map kinds to user guidance ("reconnect your account" vs "try
// again later") without platform-specific branching.
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	KindConnectionNotFound ErrorKind = "CONNECTION_NOT_FOUND"
	KindQuizNotFound       ErrorKind = "QUIZ_NOT_FOUND"
	KindPermissionDenied   ErrorKind = "PERMISSION_DENIED"
	KindRateLimited        ErrorKind = "RATE_LIMIT_EXCEEDED"
	KindTokenExpired       ErrorKind = "TOKEN_EXPIRED"
	KindPlatformError      ErrorKind = "PLATFORM_ERROR"
	KindNetworkError       ErrorKind = "NETWORK_ERROR"
)

// ErrPostGone marks an external post the platform no longer serves. The
// metrics syncer treats it as zero engagement, not as a failure.
var ErrPostGone = errors.New("external post no longer exists")

type Error struct {
	Kind     ErrorKind
	Platform string
	Message  string
	cause    error
}

func NewError(kind ErrorKind, platform, message string, cause error) *Error {
	return &Error{Kind: kind, Platform: platform, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Platform, e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Platform, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf classifies any error into the taxonomy. Errors produced outside the
// pipeline fall back to PLATFORM_ERROR.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindPlatformError
}
