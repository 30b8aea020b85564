package batch

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError signals an adapter that cannot be constructed.
type ConfigurationError struct{ Msg string }

func (e *ConfigurationError) Error() string { return "configuration: " + e.Msg }

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// InvalidInputError reports a prompt item that is neither text nor turns.
type InvalidInputError struct {
	Index int
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input at index %d: %v", e.Index, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// IsInvalidInput reports whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e)
}

// ProcessExecutionError is returned when the tool cannot be launched or exits non-zero.
// ExitCode is -1 when the process never started.
type ProcessExecutionError struct {
	Session    string
	ExitCode   int
	StderrTail string
	Err        error
}

func (e *ProcessExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tool process failed (session %s, exit %d): %v", e.Session, e.ExitCode, e.Err)
	if tail := strings.TrimSpace(e.StderrTail); tail != "" {
		b.WriteString("; stderr tail: ")
		b.WriteString(tail)
	}
	return b.String()
}

func (e *ProcessExecutionError) Unwrap() error { return e.Err }

// IsProcessExecution reports whether err is a ProcessExecutionError.
func IsProcessExecution(err error) bool {
	var e *ProcessExecutionError
	return errors.As(err, &e)
}

// MalformedResponseError reports a response line that is not a valid record.
// Line is 1-based.
type MalformedResponseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response %s:%d: %s", e.Path, e.Line, e.Reason)
}

// IsMalformedResponse reports whether err is a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var e *MalformedResponseError
	return errors.As(err, &e)
}

// IncompleteResponseError reports a response id set that differs from the request id set.
type IncompleteResponseError struct {
	Want       int
	Missing    []int
	Unexpected []int
	Duplicate  []int
}

func (e *IncompleteResponseError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing ids %v", e.Missing))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected ids %v", e.Unexpected))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate ids %v", e.Duplicate))
	}
	return fmt.Sprintf("incomplete response for %d prompts: %s", e.Want, strings.Join(parts, ", "))
}

// IsIncompleteResponse reports whether err is an IncompleteResponseError.
func IsIncompleteResponse(err error) bool {
	var e *IncompleteResponseError
	return errors.As(err, &e)
}
