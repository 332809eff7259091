package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/domain/ports"
)

const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultCommandTimeout = 60 * time.Second
	BufferSize            = 4096

	promptSudo     = "[sudo]"
	promptRoot     = "#"
	readSliceEvery = 500 * time.Millisecond
	quietWindow    = 700 * time.Millisecond
)

// errReadTimeout marks an expired prompt wait so execute can map it to the
// command-timeout error kind.
var errReadTimeout = errors.New("timeout waiting for prompt")

// shellErrorHints are the markers a Linux shell emits when a command cannot
// run at all. Dialect-level failures are detected higher up.
var shellErrorHints = []string{
	"command not found",
	"permission denied",
	"invalid command",
}

// SSHClient manages an interactive SSH session with a switch.
type SSHClient struct {
	cfg    entities.DeviceConfig
	logger ports.Logger

	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	reader  *bufio.Reader
	netConn net.Conn
	prompt  string

	// busy enforces a single command in flight.
	busy sync.Mutex
}

// NewSSHClient creates an unconnected SSH client.
func NewSSHClient(cfg entities.DeviceConfig, logger ports.Logger) *SSHClient {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &SSHClient{cfg: cfg, logger: logger}
}

func (sc *SSHClient) connectTimeout() time.Duration {
	if sc.cfg.ConnectTimeout > 0 {
		return sc.cfg.ConnectTimeout
	}
	return DefaultConnectTimeout
}

func (sc *SSHClient) commandTimeout(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	if sc.cfg.CommandTimeout > 0 {
		return sc.cfg.CommandTimeout
	}
	return DefaultCommandTimeout
}

// Connect establishes the authenticated channel, starts an interactive
// shell, detects the session prompt and optionally elevates with sudo.
func (sc *SSHClient) Connect() error {
	if sc.IsConnected() {
		return nil
	}
	host := sc.cfg.Host
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", sc.cfg.EffectivePort()))
	sshConfig := &ssh.ClientConfig{
		User:            sc.cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(sc.cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sc.connectTimeout(),
	}

	dialer := &net.Dialer{Timeout: sc.connectTimeout()}
	rawConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return &errs.ConnectTimeoutError{Host: host, Timeout: sc.connectTimeout(), Err: err}
		}
		return &errs.ProtocolError{Op: "dial", Err: err}
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, sshConfig)
	if err != nil {
		rawConn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") ||
			strings.Contains(err.Error(), "permission denied") {
			return &errs.AuthenticationError{Host: host, Err: err}
		}
		return &errs.ProtocolError{Op: "handshake", Err: err}
	}

	client := ssh.NewClient(clientConn, chans, reqs)
	session, err := client.NewSession()
	if err != nil {
		client.Close()
		rawConn.Close()
		return &errs.ProtocolError{Op: "session", Err: err}
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 9600,
		ssh.TTY_OP_OSPEED: 9600,
	}
	if err := session.RequestPty("vt100", 80, 512, modes); err != nil {
		session.Close()
		client.Close()
		rawConn.Close()
		return &errs.ProtocolError{Op: "request-pty", Err: err}
	}

	stdin, err := session.StdinPipe()
	if err == nil {
		var stdout io.Reader
		stdout, err = session.StdoutPipe()
		if err == nil {
			if err = session.Shell(); err == nil {
				sc.client = client
				sc.session = session
				sc.stdin = stdin
				sc.reader = bufio.NewReader(stdout)
				sc.netConn = rawConn
			}
		}
	}
	if err != nil {
		session.Close()
		client.Close()
		rawConn.Close()
		return &errs.ProtocolError{Op: "shell", Err: err}
	}

	sc.logger.Debug("ssh session established", "host", host)

	if err := sc.initSession(); err != nil {
		sc.Disconnect()
		return err
	}
	return nil
}

// initSession waits out the login banner, detects the prompt and elevates
// privileges when configured.
func (sc *SSHClient) initSession() error {
	sc.readQuiet(sc.connectTimeout())

	prompt, err := sc.detectPrompt()
	if err != nil {
		return err
	}
	sc.prompt = prompt
	sc.logger.Debug("prompt detected", "prompt", prompt)

	if sc.cfg.UseSudo {
		if err := sc.elevate(); err != nil {
			return err
		}
	}
	return nil
}

// detectPrompt sends a bare newline and takes the last non-empty line the
// shell echoes back as the session prompt.
func (sc *SSHClient) detectPrompt() (string, error) {
	if err := sc.send("\n"); err != nil {
		return "", &errs.ProtocolError{Op: "prompt-probe", Err: err}
	}
	output := sc.readQuiet(5 * time.Second)
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return line, nil
		}
	}
	return "", &errs.ProtocolError{Op: "prompt-probe", Err: fmt.Errorf("no prompt after newline")}
}

// elevate switches the session to root via sudo su and re-detects the
// prompt. The sudo password never reaches the logger.
func (sc *SSHClient) elevate() error {
	if err := sc.send("sudo su\n"); err != nil {
		return &errs.ProtocolError{Op: "sudo", Err: err}
	}
	output, err := sc.readUntilAny([]string{promptSudo, promptRoot}, sc.connectTimeout())
	if err != nil {
		return err
	}
	if strings.Contains(output, promptSudo) {
		if err := sc.send(sc.cfg.EffectiveSudoPassword() + "\n"); err != nil {
			return &errs.ProtocolError{Op: "sudo", Err: err}
		}
		if _, err := sc.readUntilAny([]string{promptRoot}, sc.connectTimeout()); err != nil {
			return &errs.AuthenticationError{Host: sc.cfg.Host, Err: fmt.Errorf("cannot become root")}
		}
	}
	prompt, err := sc.detectPrompt()
	if err != nil {
		return err
	}
	sc.prompt = prompt
	sc.logger.Debug("elevated to root", "prompt", prompt)
	return nil
}

// Disconnect releases the channel; safe to call on a closed client.
func (sc *SSHClient) Disconnect() {
	if sc.session != nil {
		sc.session.Close()
		sc.session = nil
	}
	if sc.client != nil {
		sc.client.Close()
		sc.client = nil
	}
	if sc.netConn != nil {
		sc.netConn.Close()
		sc.netConn = nil
	}
	sc.stdin = nil
	sc.reader = nil
	sc.logger.Debug("ssh session closed", "host", sc.cfg.Host)
}

func (sc *SSHClient) IsConnected() bool {
	return sc.session != nil && sc.client != nil
}

// IsAlive sends an SSH keepalive request and reports reachability without
// raising.
func (sc *SSHClient) IsAlive() bool {
	if !sc.IsConnected() {
		return false
	}
	_, _, err := sc.client.SendRequest("keepalive@openssh.com", true, nil)
	return err == nil
}

// Execute sends a command and blocks until the session prompt reappears or
// the timeout elapses.
func (sc *SSHClient) Execute(cmd string, timeout time.Duration) (string, error) {
	return sc.execute(cmd, nil, timeout)
}

// ExecuteExpect waits for either the given pattern or the session prompt,
// for interactive sequences such as confirmation questions.
func (sc *SSHClient) ExecuteExpect(cmd, pattern string, timeout time.Duration) (string, error) {
	return sc.execute(cmd, []string{pattern}, timeout)
}

func (sc *SSHClient) execute(cmd string, extraPatterns []string, timeout time.Duration) (string, error) {
	if !sc.IsConnected() {
		return "", errs.ErrNotConnected
	}
	if !sc.busy.TryLock() {
		return "", errs.ErrSessionBusy
	}
	defer sc.busy.Unlock()

	timeout = sc.commandTimeout(timeout)
	sc.logger.Debug("executing", "command", cmd)

	if err := sc.send(cmd + "\n"); err != nil {
		return "", &errs.ProtocolError{Op: "write", Err: err}
	}
	patterns := append([]string{sc.prompt}, extraPatterns...)
	output, err := sc.readUntilAny(patterns, timeout)
	if err != nil {
		if errors.Is(err, errReadTimeout) {
			return "", &errs.CommandTimeoutError{Command: cmd, Timeout: timeout, Partial: output}
		}
		return "", err
	}

	body := trimEcho(output, sc.prompt)
	if hint := shellError(body); hint != "" {
		return "", &errs.CommandError{Command: cmd, Output: hint}
	}
	return body, nil
}

func (sc *SSHClient) send(data string) error {
	_, err := sc.stdin.Write([]byte(data))
	return err
}

// readQuiet reads until the channel has been silent for quietWindow or the
// overall budget is spent, and returns whatever arrived.
func (sc *SSHClient) readQuiet(budget time.Duration) string {
	var output strings.Builder
	buffer := make([]byte, BufferSize)
	deadline := time.Now().Add(budget)
	for {
		if sc.netConn != nil {
			_ = sc.netConn.SetReadDeadline(time.Now().Add(quietWindow))
		}
		n, err := sc.reader.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if output.Len() > 0 || time.Now().After(deadline) {
					return output.String()
				}
				continue
			}
			return output.String()
		}
		if time.Now().After(deadline) {
			return output.String()
		}
	}
}

func (sc *SSHClient) readUntilAny(patterns []string, timeout time.Duration) (string, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	output.Grow(BufferSize)
	deadline := time.Now().Add(timeout)

	for {
		if sc.netConn != nil {
			_ = sc.netConn.SetReadDeadline(time.Now().Add(readSliceEvery))
		}
		n, err := sc.reader.Read(buffer)
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
				if time.Now().After(deadline) {
					return output.String(), fmt.Errorf("%w: %s", errReadTimeout, strings.Join(patterns, ", "))
				}
				continue
			}
			return output.String(), &errs.ProtocolError{Op: "read", Err: err}
		}
		if time.Now().After(deadline) {
			return output.String(), fmt.Errorf("%w: %s", errReadTimeout, strings.Join(patterns, ", "))
		}
	}
}

// trimEcho drops the echoed command line and the trailing prompt line.
func trimEcho(output, prompt string) string {
	lines := strings.Split(output, "\n")
	if len(lines) <= 1 {
		return ""
	}
	body := lines[1:]
	last := strings.TrimSpace(body[len(body)-1])
	if last == "" || strings.Contains(last, prompt) {
		body = body[:len(body)-1]
	}
	return strings.Join(body, "\n")
}

func shellError(output string) string {
	lowered := strings.ToLower(output)
	for _, hint := range shellErrorHints {
		if strings.Contains(lowered, hint) {
			return strings.TrimSpace(output)
		}
	}
	return ""
}
