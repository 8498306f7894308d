package interp

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a command isn't a built-in and isn't on the
	// PATH.
	ErrNotFound = errors.New("command not found")

	// ErrNoShell is returned when a subshell is needed but the interpreter
	// doesn't know which executable to run.
	ErrNoShell = errors.New("no shell executable to run subshell")
)

const (
	StatusRedirectFailed = 1
	StatusUsage          = 2
	StatusCannotExecute  = 126
	StatusNotFound       = 127
)

// ExecutionError is reported when a single command can't be run. Other
// commands on the same line still run.
type ExecutionError struct {
	Command string
	Err     error
	// Status is the exit status given to the failed command.
	Status int
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
