package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/mainloop"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// Code classifies a command failure. The wire carries only the message
// string; codes drive logging, tests and client-side handling.
type Code int

const (
	CodeOK Code = 0

	// Envelope codes (1000-1999)

	CodeDecode         Code = 1001
	CodeBadParams      Code = 1002
	CodeUnknownCommand Code = 1003

	// Resolution codes (2000-2999)

	CodeEntityNotFound    Code = 2001
	CodeComponentNotFound Code = 2002
	CodeMemberNotFound    Code = 2003
	CodeUnknownType       Code = 2004
	CodeAssetNotFound     Code = 2005

	// Value codes (3000-3999)

	CodeConversion Code = 3001
	CodeReadOnly   Code = 3002

	// Execution codes (4000-4999)

	CodeTimeout     Code = 4001
	CodeQueueFull   Code = 4002
	CodeHostFault   Code = 4003
	CodeUnavailable Code = 4004

	// Generic codes (9000-9999)

	CodeInternal Code = 9001
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeDecode:
		return "decode"
	case CodeBadParams:
		return "bad-params"
	case CodeUnknownCommand:
		return "unknown-command"
	case CodeEntityNotFound:
		return "entity-not-found"
	case CodeComponentNotFound:
		return "component-not-found"
	case CodeMemberNotFound:
		return "member-not-found"
	case CodeUnknownType:
		return "unknown-type"
	case CodeAssetNotFound:
		return "asset-not-found"
	case CodeConversion:
		return "conversion"
	case CodeReadOnly:
		return "read-only"
	case CodeTimeout:
		return "timeout"
	case CodeQueueFull:
		return "queue-full"
	case CodeHostFault:
		return "host-fault"
	case CodeUnavailable:
		return "unavailable"
	case CodeInternal:
		return "internal"
	}
	return "unknown"
}

// Error is a classified command failure. Message is what the client sees in
// the envelope's error field.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// codeMap classifies sentinel errors from the core packages.
var codeMap = []struct {
	err  error
	code Code
}{
	{scene.ErrEntityNotFound, CodeEntityNotFound},
	{scene.ErrComponentNotFound, CodeComponentNotFound},
	{scene.ErrEmptyName, CodeBadParams},
	{scene.ErrRootImmutable, CodeBadParams},
	{scene.ErrSceneMismatch, CodeBadParams},
	{scene.ErrComponentAttached, CodeBadParams},
	{scene.ErrReparentCycle, CodeBadParams},
	{fields.ErrMemberNotFound, CodeMemberNotFound},
	{fields.ErrTypeUnknown, CodeUnknownType},
	{fields.ErrTypeRegistered, CodeInternal},
	{fields.ErrMemberReadOnly, CodeReadOnly},
	{fields.ErrConversion, CodeConversion},
	{assets.ErrAssetNotFound, CodeAssetNotFound},
	{assets.ErrBadDefinition, CodeConversion},
	{assets.ErrOutsideVault, CodeBadParams},
	{mainloop.ErrQueueFull, CodeQueueFull},
	{mainloop.ErrLoopClosed, CodeUnavailable},
	{mainloop.ErrNotRunning, CodeUnavailable},
	{context.DeadlineExceeded, CodeTimeout},
	{context.Canceled, CodeTimeout},
}

// CodeOf classifies any error. Unrecognized errors are internal.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	var panicErr *mainloop.PanicError
	if errors.As(err, &panicErr) {
		return CodeHostFault
	}
	for _, m := range codeMap {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return CodeInternal
}

// AsError normalizes any error into a classified *Error, preserving an
// existing classification.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Code: CodeOf(err), Message: err.Error(), Cause: err}
}
