package blaze

import (
	"errors"
	"fmt"

	"github.com/korrin/meago/internal/blaze/tdf"
)

// Global protocol error codes carried in binary error responses.
const (
	ErrSystem                 uint16 = 0x4001
	ErrComponentNotFound      uint16 = 0x4002
	ErrCommandNotFound        uint16 = 0x4003
	ErrAuthenticationRequired uint16 = 0x4004
	ErrTimeout                uint16 = 0x4005
	ErrDisconnected           uint16 = 0x4006
	ErrDuplicateLogin         uint16 = 0x4007
	ErrAuthorizationRequired  uint16 = 0x4008
	ErrCancelled              uint16 = 0x4009
)

// Database error codes mapped from the persistence layer.
const (
	ErrDBSystem                 uint16 = 0x4065
	ErrDBNoConnectionAvailable  uint16 = 0x4068
	ErrDBDuplicateEntry         uint16 = 0x4069
	ErrDBDisconnected           uint16 = 0x406B
	ErrDBTimeout                uint16 = 0x406C
	ErrDBInitFailure            uint16 = 0x406D
	ErrDBTransactionNotComplete uint16 = 0x406E
)

// ErrMissingHandler reports an unregistered (component, command) pair.
type MissingHandlerError struct {
	Component uint16
	Command   uint16
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("no handler for component %d command 0x%X", e.Component, e.Command)
}

// RouteError carries the 16-bit code a failed handler answers with.
type RouteError struct {
	Code uint16
	Err  error
}

func (e *RouteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("blaze error 0x%04X: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("blaze error 0x%04X", e.Code)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// Errorf builds a RouteError with a formatted cause.
func Errorf(code uint16, format string, args ...any) error {
	return &RouteError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ErrorCodeFor maps a handler error to the wire code for its response.
// TDF decode failures deliberately map to no code: the retail client
// tolerates an empty RESPONSE frame better than an error it cannot parse.
func ErrorCodeFor(err error) (uint16, bool) {
	var route *RouteError
	if errors.As(err, &route) {
		return route.Code, true
	}
	var missing *MissingHandlerError
	if errors.As(err, &missing) {
		return ErrCommandNotFound, true
	}
	var eofErr *tdf.UnexpectedEOFError
	var typeErr *tdf.InvalidTypeError
	var tagTypeErr *tdf.InvalidTagTypeError
	var missingTag *tdf.MissingTagError
	if errors.As(err, &eofErr) || errors.As(err, &typeErr) ||
		errors.As(err, &tagTypeErr) || errors.As(err, &missingTag) ||
		errors.Is(err, tdf.ErrInvalidUTF8) {
		return 0, false
	}
	return ErrSystem, true
}
