package mainloop

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRunning = errors.New("loop already running")
	ErrNotRunning     = errors.New("loop is not running")
	ErrLoopClosed     = errors.New("loop closed")
	ErrQueueFull      = errors.New("invocation queue is full")
)

// PanicError carries a panic recovered while running an invocation on the
// loop. The panic value travels verbatim to the remote caller.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("host fault: %v", e.Value)
}
