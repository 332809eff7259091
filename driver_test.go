package cumulus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/domain/ports"
)

// fakeTransport answers commands from a scripted table.
type fakeTransport struct {
	replies   map[string]string
	failures  map[string]error
	commands  []string
	connected bool
	alive     bool
}

func (ft *fakeTransport) Connect() error {
	ft.connected = true
	ft.alive = true
	return nil
}

func (ft *fakeTransport) Disconnect() {
	ft.connected = false
	ft.alive = false
}

func (ft *fakeTransport) IsConnected() bool { return ft.connected }
func (ft *fakeTransport) IsAlive() bool     { return ft.alive }

func (ft *fakeTransport) Execute(cmd string, _ time.Duration) (string, error) {
	ft.commands = append(ft.commands, cmd)
	if err, ok := ft.failures[cmd]; ok {
		return "", err
	}
	if reply, ok := ft.replies[cmd]; ok {
		return reply, nil
	}
	return "", &errs.CommandError{Command: cmd, Output: "command not found"}
}

func (ft *fakeTransport) ExecuteExpect(cmd, _ string, timeout time.Duration) (string, error) {
	return ft.Execute(cmd, timeout)
}

func (ft *fakeTransport) ran(cmd string) bool {
	for _, c := range ft.commands {
		if c == cmd {
			return true
		}
	}
	return false
}

func newTestDriver(t *testing.T, ft *fakeTransport, opts ...Option) *Driver {
	t.Helper()
	opts = append([]Option{WithUsername("cumulus"), WithDialect(entities.DialectNVUE)}, opts...)
	d := NewDriver("leaf01", opts...)
	d.newTransport = func(entities.DeviceConfig, ports.Logger) ports.Transport { return ft }
	return d
}

const nvueInterfacesJSON = `{
  "swp1": {
    "description": "to spine01",
    "link": {"admin-status": "up", "oper-status": "up", "speed": "10G", "mtu": 9216, "mac": "00:11:22:33:44:55"},
    "ip": {"address": {"10.0.0.1/31": {}}}
  },
  "swp2": {
    "link": {"admin-status": "up", "oper-status": "down"}
  }
}`

func TestClosedDriverRejectsOperations(t *testing.T) {
	d := NewDriver("leaf01")
	_, err := d.GetFacts()
	assert.ErrorIs(t, err, errs.ErrNotConnected)
	_, err = d.GetInterfaces()
	assert.ErrorIs(t, err, errs.ErrNotConnected)
	assert.ErrorIs(t, d.LoadMergeCandidate("nv set system hostname x"), errs.ErrNotConnected)
	assert.ErrorIs(t, d.CommitConfig(), errs.ErrNotConnected)
	assert.False(t, d.IsAlive())
	assert.Empty(t, d.Dialect())
}

func TestOpenPinsDialect(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	defer d.Close()
	assert.Equal(t, "nvue", d.Dialect())
	assert.True(t, d.IsAlive())
	// Pinning the dialect skips the probe command.
	assert.False(t, ft.ran("nv show system"))
}

func TestOpenTwiceIsNoop(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	require.NoError(t, d.Open())
	d.Close()
	d.Close()
	assert.False(t, d.IsAlive())
}

func TestGetFacts(t *testing.T) {
	ft := &fakeTransport{replies: map[string]string{
		"nv show system -o json":    `{"hostname": "leaf01", "build": "Cumulus Linux 5.4.0", "uptime": 93784}`,
		"nv show platform -o json":  `{"hardware": {"model": "VX", "serial-number": "50:54:00:00:00:11"}}`,
		"nv show interface -o json": nvueInterfacesJSON,
	}}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	defer d.Close()

	facts, err := d.GetFacts()
	require.NoError(t, err)
	assert.Equal(t, "Nvidia", facts.Vendor)
	assert.Equal(t, "leaf01", facts.Hostname)
	assert.Equal(t, "leaf01", facts.FQDN)
	assert.Equal(t, "VX", facts.Model)
	assert.Equal(t, 93784.0, facts.Uptime)
	assert.Equal(t, []string{"swp1", "swp2"}, facts.InterfaceList)
}

func TestGetInterfaces(t *testing.T) {
	ft := &fakeTransport{replies: map[string]string{
		"nv show interface -o json": nvueInterfacesJSON,
	}}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	defer d.Close()

	interfaces, err := d.GetInterfaces()
	require.NoError(t, err)
	require.Contains(t, interfaces, "swp1")
	swp1 := interfaces["swp1"]
	assert.True(t, swp1.IsUp)
	assert.True(t, swp1.IsEnabled)
	assert.Equal(t, 10000.0, swp1.Speed)
	assert.Equal(t, 9216, swp1.MTU)
	assert.Equal(t, "00:11:22:33:44:55", swp1.MACAddress)
	swp2 := interfaces["swp2"]
	assert.False(t, swp2.IsUp)
	assert.True(t, swp2.IsEnabled)
}

func TestGetInterfacesIP(t *testing.T) {
	ft := &fakeTransport{replies: map[string]string{
		"nv show interface -o json": nvueInterfacesJSON,
	}}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	defer d.Close()

	ips, err := d.GetInterfacesIP()
	require.NoError(t, err)
	require.Contains(t, ips, "swp1")
	assert.NotContains(t, ips, "swp2")
	assert.Equal(t, 31, ips["swp1"]["ipv4"]["10.0.0.1"].PrefixLength)
}

func TestCommandTimeoutClosesSession(t *testing.T) {
	timeout := &errs.CommandTimeoutError{Command: "nv show interface -o json", Timeout: time.Second}
	ft := &fakeTransport{failures: map[string]error{
		"nv show interface -o json": timeout,
	}}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())

	_, err := d.GetInterfaces()
	var cmt *errs.CommandTimeoutError
	require.ErrorAs(t, err, &cmt)

	// The prompt discipline is gone; the session must not be reused.
	assert.False(t, ft.connected)
	_, err = d.GetFacts()
	assert.ErrorIs(t, err, errs.ErrNotConnected)
}

func TestCommandErrorKeepsSessionOpen(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	defer d.Close()

	_, err := d.GetVLANs()
	var cmdErr *errs.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.True(t, ft.connected, "a CLI error is not a transport failure")
}

func TestPing(t *testing.T) {
	ft := &fakeTransport{replies: map[string]string{
		"ping 10.0.0.2 -t 255 -w 10 -s 100 -c 5": `PING 10.0.0.2 (10.0.0.2) 100(128) bytes of data.
108 bytes from 10.0.0.2: icmp_seq=1 ttl=64 time=0.342 ms

--- 10.0.0.2 ping statistics ---
1 packets transmitted, 1 received, 0% packet loss, time 0ms
rtt min/avg/max/mdev = 0.342/0.342/0.342/0.000 ms`,
	}}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	defer d.Close()

	result, err := d.Ping(entities.PingRequest{Destination: "10.0.0.2"})
	require.NoError(t, err)
	require.NotNil(t, result.Success)
	assert.Equal(t, 1, result.Success.ProbesSent)
	assert.Zero(t, result.Success.PacketLoss)
}

func TestCLI(t *testing.T) {
	ft := &fakeTransport{replies: map[string]string{
		"hostname": "leaf01",
	}}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	defer d.Close()

	out, err := d.CLI([]string{"hostname"})
	require.NoError(t, err)
	assert.Equal(t, "leaf01", out["hostname"])
}

func TestCloseAbortsStagedCandidate(t *testing.T) {
	ft := &fakeTransport{replies: map[string]string{
		"nv set system hostname leaf09": "",
		"nv config detach":              "",
	}}
	d := newTestDriver(t, ft)
	require.NoError(t, d.Open())
	require.NoError(t, d.LoadMergeCandidate("nv set system hostname leaf09"))
	d.Close()
	assert.True(t, ft.ran("nv config detach"))
}

func TestOptionDefaults(t *testing.T) {
	d := NewDriver("leaf01", WithUsername("cumulus"), WithSudo(""))
	assert.Equal(t, entities.TransportSSH, d.cfg.Transport)
	assert.True(t, d.cfg.UseSudo)
	assert.Equal(t, 22, d.cfg.EffectivePort())
}

func TestErrorTaxonomyMatching(t *testing.T) {
	var err error = &errs.CommandTimeoutError{Command: "x", Timeout: time.Second}
	assert.True(t, errs.IsTimeout(err))
	assert.False(t, errs.IsTimeout(errors.New("other")))
}
