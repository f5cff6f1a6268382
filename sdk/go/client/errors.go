package client

import "errors"

var ErrClientClosed = errors.New("client is closed")

// CommandError is a bridge-side failure: the command was delivered and the
// bridge answered {"error": ...}.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return e.Command + ": " + e.Message
}

// IsCommandError reports whether err is a bridge-side failure, as opposed to
// a transport or client fault.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}
