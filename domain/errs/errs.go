// Package errs defines the error taxonomy shared by the transport, dialect,
// mapper and driver layers. Callers match with errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is returned for any operation on a closed driver.
	ErrNotConnected = errors.New("session is not open")

	// ErrSessionBusy is returned when a command is already in flight.
	ErrSessionBusy = errors.New("another command is in flight on this session")

	// ErrRollbackUnavailable is returned when the device keeps no
	// previous-commit checkpoint to roll back to.
	ErrRollbackUnavailable = errors.New("device retains no commit checkpoint to roll back to")
)

// AuthenticationError indicates the device rejected the supplied credentials.
type AuthenticationError struct {
	Host string
	Err  error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication to %s failed: %v", e.Host, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ConnectTimeoutError indicates the host was unreachable within the
// configured connect timeout.
type ConnectTimeoutError struct {
	Host    string
	Timeout time.Duration
	Err     error
}

func (e *ConnectTimeoutError) Error() string {
	return fmt.Sprintf("connect to %s timed out after %s", e.Host, e.Timeout)
}

func (e *ConnectTimeoutError) Unwrap() error { return e.Err }

// ProtocolError indicates a transport-level anomaly below the CLI layer.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport protocol error during %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// CommandTimeoutError indicates the session prompt never reappeared within
// the per-command timeout. The session must be closed and reopened.
type CommandTimeoutError struct {
	Command string
	Timeout time.Duration
	// Partial holds whatever output arrived before the deadline.
	Partial string
}

func (e *CommandTimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %s waiting for prompt", e.Command, e.Timeout)
}

// CommandError indicates the switch accepted the transport write but signaled
// a shell or CLI error in its output.
type CommandError struct {
	Command string
	Output  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed on device: %s", e.Command, e.Output)
}

// UnsupportedFormatError indicates device output did not match the shape the
// detected dialect expects. It is surfaced, never silently coerced.
type UnsupportedFormatError struct {
	Command string
	Detail  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("output of %q does not match the expected format: %s", e.Command, e.Detail)
}

// MappingError indicates structurally inconsistent intermediate data, such as
// a neighbor referencing an interface absent from the interface table.
type MappingError struct {
	Getter string
	Detail string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: inconsistent device data: %s", e.Getter, e.Detail)
}

// CommitFailedError indicates a configuration apply failed. Atomic reports
// whether the device guarantees the running config was left untouched; the
// legacy dialect cannot, and callers must treat a non-atomic failure as a
// possibly partially-applied device.
type CommitFailedError struct {
	Dialect string
	Reason  string
	Atomic  bool
}

func (e *CommitFailedError) Error() string {
	if e.Atomic {
		return fmt.Sprintf("commit failed, running config unchanged: %s", e.Reason)
	}
	return fmt.Sprintf("commit failed on %s dialect, device may be partially configured: %s", e.Dialect, e.Reason)
}

// IsTimeout reports whether err is a connect or command timeout.
func IsTimeout(err error) bool {
	var ct *ConnectTimeoutError
	var cmt *CommandTimeoutError
	return errors.As(err, &ct) || errors.As(err, &cmt)
}
