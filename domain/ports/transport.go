package ports

import "time"

// Transport defines the port for interacting with a switch CLI session.
// Implementations keep exactly one command in flight; a concurrent Execute
// fails with errs.ErrSessionBusy instead of interleaving output.
type Transport interface {
	Connect() error
	Disconnect()
	// Execute sends a command and waits for the session prompt.
	Execute(cmd string, timeout time.Duration) (string, error)
	// ExecuteExpect waits for an explicit pattern instead of the prompt,
	// used for interactive sequences such as apply confirmations.
	ExecuteExpect(cmd, pattern string, timeout time.Duration) (string, error)
	IsConnected() bool
	// IsAlive probes reachability without raising.
	IsAlive() bool
}
