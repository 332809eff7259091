package transport

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/ziutek/telnet"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/domain/ports"
)

const (
	promptLogin    = "login:"
	promptPassword = "Password:"
)

// TelnetClient manages a console-server telnet session with a switch. Used
// when SSH is unavailable, typically out-of-band console access.
type TelnetClient struct {
	cfg    entities.DeviceConfig
	logger ports.Logger

	conn   *telnet.Conn
	prompt string
	busy   sync.Mutex
}

// NewTelnetClient creates an unconnected telnet client.
func NewTelnetClient(cfg entities.DeviceConfig, logger ports.Logger) *TelnetClient {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &TelnetClient{cfg: cfg, logger: logger}
}

func (tc *TelnetClient) connectTimeout() time.Duration {
	if tc.cfg.ConnectTimeout > 0 {
		return tc.cfg.ConnectTimeout
	}
	return DefaultConnectTimeout
}

func (tc *TelnetClient) commandTimeout(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	if tc.cfg.CommandTimeout > 0 {
		return tc.cfg.CommandTimeout
	}
	return DefaultCommandTimeout
}

// Connect logs in through the Linux login prompt sequence and detects the
// shell prompt.
func (tc *TelnetClient) Connect() error {
	if tc.conn != nil {
		return nil
	}
	addr := net.JoinHostPort(tc.cfg.Host, fmt.Sprintf("%d", tc.cfg.EffectivePort()))
	conn, err := telnet.DialTimeout("tcp", addr, tc.connectTimeout())
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return &errs.ConnectTimeoutError{Host: tc.cfg.Host, Timeout: tc.connectTimeout(), Err: err}
		}
		return &errs.ProtocolError{Op: "dial", Err: err}
	}
	tc.conn = conn
	tc.logger.Debug("telnet session established", "host", tc.cfg.Host)

	steps := []struct {
		waitFor string
		send    string
	}{
		{promptLogin, tc.cfg.Username + "\n"},
		{promptPassword, tc.cfg.Password + "\n"},
	}
	for _, step := range steps {
		if _, err := tc.readUntilAny([]string{step.waitFor}, tc.connectTimeout()); err != nil {
			tc.Disconnect()
			return &errs.AuthenticationError{Host: tc.cfg.Host, Err: fmt.Errorf("no %s prompt", step.waitFor)}
		}
		if err := tc.send(step.send); err != nil {
			tc.Disconnect()
			return &errs.ProtocolError{Op: "login", Err: err}
		}
	}

	prompt, err := tc.detectPrompt()
	if err != nil {
		tc.Disconnect()
		return err
	}
	tc.prompt = prompt
	return nil
}

func (tc *TelnetClient) detectPrompt() (string, error) {
	output, _ := tc.readUntilAny(nil, 2*time.Second)
	if err := tc.send("\n"); err != nil {
		return "", &errs.ProtocolError{Op: "prompt-probe", Err: err}
	}
	more, _ := tc.readUntilAny(nil, 2*time.Second)
	output += more
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" && !strings.Contains(line, promptPassword) {
			return line, nil
		}
	}
	return "", &errs.AuthenticationError{Host: tc.cfg.Host, Err: fmt.Errorf("no shell prompt after login")}
}

// Disconnect closes the session; safe when already closed.
func (tc *TelnetClient) Disconnect() {
	if tc.conn != nil {
		tc.conn.Close()
		tc.conn = nil
		tc.logger.Debug("telnet session closed", "host", tc.cfg.Host)
	}
}

func (tc *TelnetClient) IsConnected() bool {
	return tc.conn != nil
}

// IsAlive probes the console with a bare newline.
func (tc *TelnetClient) IsAlive() bool {
	if tc.conn == nil {
		return false
	}
	if !tc.busy.TryLock() {
		// a command is in flight, the session is necessarily alive
		return true
	}
	defer tc.busy.Unlock()
	if err := tc.send("\n"); err != nil {
		return false
	}
	_, err := tc.readUntilAny([]string{tc.prompt}, 5*time.Second)
	return err == nil
}

// Execute sends a command and blocks until the shell prompt reappears.
func (tc *TelnetClient) Execute(cmd string, timeout time.Duration) (string, error) {
	return tc.execute(cmd, nil, timeout)
}

// ExecuteExpect waits for either the pattern or the shell prompt.
func (tc *TelnetClient) ExecuteExpect(cmd, pattern string, timeout time.Duration) (string, error) {
	return tc.execute(cmd, []string{pattern}, timeout)
}

func (tc *TelnetClient) execute(cmd string, extraPatterns []string, timeout time.Duration) (string, error) {
	if tc.conn == nil {
		return "", errs.ErrNotConnected
	}
	if !tc.busy.TryLock() {
		return "", errs.ErrSessionBusy
	}
	defer tc.busy.Unlock()

	timeout = tc.commandTimeout(timeout)
	tc.logger.Debug("executing", "command", cmd)

	if err := tc.send(cmd + "\n"); err != nil {
		return "", &errs.ProtocolError{Op: "write", Err: err}
	}
	patterns := append([]string{tc.prompt}, extraPatterns...)
	output, err := tc.readUntilAny(patterns, timeout)
	if err != nil {
		if errors.Is(err, errReadTimeout) {
			return "", &errs.CommandTimeoutError{Command: cmd, Timeout: timeout, Partial: output}
		}
		return "", err
	}
	body := trimEcho(output, tc.prompt)
	if hint := shellError(body); hint != "" {
		return "", &errs.CommandError{Command: cmd, Output: hint}
	}
	return body, nil
}

func (tc *TelnetClient) send(data string) error {
	_, err := tc.conn.Write([]byte(data))
	return err
}

// readUntilAny reads until one of the patterns appears, the line goes quiet
// (nil patterns) or the deadline expires.
func (tc *TelnetClient) readUntilAny(patterns []string, timeout time.Duration) (string, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	output.Grow(BufferSize)
	deadline := time.Now().Add(timeout)

	for {
		_ = tc.conn.SetReadDeadline(time.Now().Add(readSliceEvery))
		n, err := tc.conn.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
			text := output.String()
			for _, pattern := range patterns {
				if pattern != "" && strings.Contains(text, pattern) {
					return text, nil
				}
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if len(patterns) == 0 {
					return output.String(), nil
				}
				if time.Now().After(deadline) {
					return output.String(), fmt.Errorf("%w: %s", errReadTimeout, strings.Join(patterns, ", "))
				}
				continue
			}
			return output.String(), &errs.ProtocolError{Op: "read", Err: err}
		}
		if time.Now().After(deadline) {
			if len(patterns) == 0 {
				return output.String(), nil
			}
			return output.String(), fmt.Errorf("%w: %s", errReadTimeout, strings.Join(patterns, ", "))
		}
	}
}
