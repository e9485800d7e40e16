package shell

import (
	"errors"
	"fmt"
)

// commandError carries the message shown to the user and the underlying cause
type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string { return e.msg }

func (e *commandError) Unwrap() error { return e.err }

// fail builds a user message from format and wraps cause
func fail(cause error, format string, args ...interface{}) error {
	return &commandError{msg: fmt.Sprintf(format, args...), err: cause}
}

func errorf(format string, args ...interface{}) error {
	return &commandError{msg: fmt.Sprintf(format, args...)}
}

// missingArg reports a command invoked without a required argument
func missingArg(what string) error {
	return errorf("Invalid input: missing %s argument", what)
}

// describe renders err with its cause for the log file
func describe(err error) string {
	var ce *commandError
	if errors.As(err, &ce) && ce.err != nil && ce.err.Error() != ce.msg {
		return fmt.Sprintf("%s (cause: %v)", ce.msg, ce.err)
	}
	return err.Error()
}
