package cumulus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/domain/ports"
	"github.com/napalm-go/cumulus/infrastructure/transport"
	"github.com/napalm-go/cumulus/mapper"
	"github.com/napalm-go/cumulus/platform"
	"github.com/napalm-go/cumulus/schema"
)

// Driver manages one session to a Cumulus Linux switch and exposes the
// vendor-neutral getters and configuration operations. A Driver is either
// closed or open; every getter and config operation on a closed Driver
// returns errs.ErrNotConnected.
type Driver struct {
	cfg    entities.DeviceConfig
	logger ports.Logger
	force  bool

	// newTransport builds the session; overridden in tests.
	newTransport func(entities.DeviceConfig, ports.Logger) ports.Transport

	mu        sync.Mutex
	transport ports.Transport
	snmp      *transport.SNMPReader
	dialect   platform.Dialect
	opened    bool

	candidate candidate
}

// NewDriver builds a closed Driver for host. Call Open before using it.
func NewDriver(host string, opts ...Option) *Driver {
	d := &Driver{
		cfg:          entities.DeviceConfig{Host: host, Transport: entities.TransportSSH},
		logger:       ports.NopLogger{},
		newTransport: transport.Get,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cfg.Transport == "" {
		d.cfg.Transport = entities.TransportSSH
	}
	return d
}

// Open establishes the transport session and fixes the command dialect for
// the session's lifetime. Opening an already open Driver is a no-op.
func (d *Driver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.opened {
		return nil
	}

	t := d.newTransport(d.cfg, d.logger)
	if !t.IsConnected() {
		if err := t.Connect(); err != nil {
			return err
		}
	}

	var dialect platform.Dialect
	var err error
	if d.cfg.Dialect != entities.DialectAuto {
		dialect, err = platform.Get(d.cfg.Dialect)
	} else {
		dialect, err = platform.Detect(t, d.cfg)
	}
	if err != nil {
		t.Disconnect()
		return fmt.Errorf("open %s: %w", d.cfg.Host, err)
	}

	d.transport = t
	d.dialect = dialect
	d.snmp = transport.NewSNMPReader(d.cfg, d.logger)
	d.opened = true
	d.candidate.reset()
	d.logger.Info("session opened", "host", d.cfg.Host, "dialect", dialect.Name())
	return nil
}

// Close tears the session down. Any staged candidate configuration is
// forgotten on the driver side; device-side candidate stores are aborted on
// a best-effort basis. Closing a closed Driver is a no-op.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return
	}
	if d.candidate.state == candidateStaged {
		if err := d.dialect.Abort(d.transport, d.cfg); err != nil {
			d.logger.Warn("abort of staged candidate failed during close", "host", d.cfg.Host, "error", err)
		}
	}
	d.candidate.reset()
	d.transport.Disconnect()
	d.opened = false
	d.logger.Info("session closed", "host", d.cfg.Host)
}

// IsAlive reports whether the session would accept a command right now. It
// never returns an error; a closed or dead session reads false.
func (d *Driver) IsAlive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return false
	}
	return d.transport.IsAlive()
}

// Dialect names the command dialect the session speaks, or "" when closed.
func (d *Driver) Dialect() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return ""
	}
	return d.dialect.Name()
}

func (d *Driver) session() (ports.Transport, platform.Dialect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return nil, nil, errs.ErrNotConnected
	}
	return d.transport, d.dialect, nil
}

// fatal closes the session when err indicates the prompt discipline is lost.
// The prompt may reappear mid-output after a timeout, so the session cannot
// be trusted for further commands.
func (d *Driver) fatal(err error) {
	var cmt *errs.CommandTimeoutError
	var pe *errs.ProtocolError
	if !errors.As(err, &cmt) && !errors.As(err, &pe) {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return
	}
	d.logger.Warn("closing session after transport failure", "host", d.cfg.Host, "error", err)
	d.candidate.reset()
	d.transport.Disconnect()
	d.opened = false
}

// GetFacts returns the device identity block.
func (d *Driver) GetFacts() (schema.Facts, error) {
	t, dialect, err := d.session()
	if err != nil {
		return schema.Facts{}, err
	}
	rec, err := dialect.Facts(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return schema.Facts{}, err
	}
	return mapper.Facts(rec)
}

// GetInterfaces returns per-interface state keyed by name.
func (d *Driver) GetInterfaces() (map[string]schema.Interface, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.Interfaces(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return nil, err
	}
	return mapper.Interfaces(recs)
}

// GetInterfacesIP returns assigned addresses keyed by interface, protocol
// and address.
func (d *Driver) GetInterfacesIP() (map[string]schema.InterfaceIP, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.Interfaces(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return nil, err
	}
	return mapper.InterfacesIP(recs)
}

// GetInterfaceMode returns the switchport mode ("access", "trunk" or
// "routed") of one interface.
func (d *Driver) GetInterfaceMode(name string) (string, error) {
	t, dialect, err := d.session()
	if err != nil {
		return "", err
	}
	mode, err := dialect.InterfaceMode(t, d.cfg, name)
	if err != nil {
		d.fatal(err)
		return "", err
	}
	return mode, nil
}

// GetBGPNeighbors returns BGP sessions grouped by routing instance. Cumulus
// reports the default VRF only, under the "global" key.
func (d *Driver) GetBGPNeighbors() (map[string]schema.BGPInstance, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.BGPNeighbors(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return nil, err
	}
	return mapper.BGPNeighbors(recs)
}

// GetLLDPNeighbors returns discovered neighbors in brief form, keyed by
// local port.
func (d *Driver) GetLLDPNeighbors() (map[string][]schema.LLDPNeighbor, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.LLDPNeighbors(t, d.cfg, "", false)
	if err != nil {
		d.fatal(err)
		return nil, err
	}
	return mapper.LLDPNeighbors(recs)
}

// GetLLDPNeighborsDetail returns discovered neighbors in full form. An empty
// iface covers every port.
func (d *Driver) GetLLDPNeighborsDetail(iface string) (map[string][]schema.LLDPNeighborDetail, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.LLDPNeighbors(t, d.cfg, iface, true)
	if err != nil {
		d.fatal(err)
		return nil, err
	}
	return mapper.LLDPNeighborsDetail(recs)
}

// GetARPTable returns the IPv4 neighbor table.
func (d *Driver) GetARPTable() ([]schema.ARPEntry, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.ARPTable(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return nil, err
	}
	return mapper.ARPTable(recs)
}

// GetMACAddressTable returns the bridge forwarding table. When the CLI query
// fails and an SNMP community is configured, the table is read from the
// Q-BRIDGE MIB instead.
func (d *Driver) GetMACAddressTable() ([]schema.MACTableEntry, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.MACTable(t, d.cfg)
	if err != nil {
		if d.snmp.Available() {
			d.logger.Warn("forwarding-table CLI query failed, falling back to SNMP", "host", d.cfg.Host, "error", err)
			if snmpRecs, snmpErr := d.snmp.MACTable(); snmpErr == nil {
				return mapper.MACTable(snmpRecs)
			}
		}
		d.fatal(err)
		return nil, err
	}
	return mapper.MACTable(recs)
}

// GetVLANs returns bridge VLANs keyed by ID.
func (d *Driver) GetVLANs() (map[int]schema.VLAN, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.VLANs(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return nil, err
	}
	return mapper.VLANs(recs)
}

// GetEnvironment returns chassis sensor state.
func (d *Driver) GetEnvironment() (schema.Environment, error) {
	t, dialect, err := d.session()
	if err != nil {
		return schema.Environment{}, err
	}
	recs, err := dialect.Environment(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return schema.Environment{}, err
	}
	return mapper.Environment(recs)
}

// GetNTPStats returns the upstream NTP peers.
func (d *Driver) GetNTPStats() ([]schema.NTPStat, error) {
	t, dialect, err := d.session()
	if err != nil {
		return nil, err
	}
	recs, err := dialect.NTPStats(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return nil, err
	}
	return mapper.NTPStats(recs)
}

// Ping runs an echo probe from the switch and reports the parsed result.
// Probe failures are reported inside the result, not as a Go error.
func (d *Driver) Ping(req entities.PingRequest) (schema.PingResult, error) {
	t, dialect, err := d.session()
	if err != nil {
		return schema.PingResult{}, err
	}
	rec, err := dialect.Ping(t, d.cfg, req.WithDefaults())
	if err != nil {
		d.fatal(err)
		return schema.PingResult{}, err
	}
	return mapper.Ping(rec), nil
}

// CLI runs raw commands for troubleshooting, keyed by command.
func (d *Driver) CLI(commands []string) (map[string]string, error) {
	t, _, err := d.session()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(commands))
	for _, cmd := range commands {
		output, err := t.Execute(cmd, d.cfg.CommandTimeout)
		if err != nil {
			d.fatal(err)
			return nil, err
		}
		out[cmd] = output
	}
	return out, nil
}
