// Package legacy implements the pre-NVUE command dialect: NCLU `net` for
// show and staging commands, vtysh for routing state, iproute2 and classic
// Linux tools for the rest. NCLU offers JSON for some views; everything else
// is line-oriented text.
package legacy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/domain/ports"
	"github.com/napalm-go/cumulus/platform/conv"
	"github.com/napalm-go/cumulus/platform/textparse"
)

const dialectName = "legacy"

const (
	cmdHostname          = "hostname"
	cmdShowSystem        = "net show system"
	cmdSyseeprom         = "decode-syseeprom"
	cmdShowInterfacesAll = "net show interface all json"
	cmdShowBGPSummary    = `vtysh -c "show ip bgp summary json"`
	cmdShowLLDP          = "net show lldp json"
	cmdShowARP           = "arp -n"
	cmdShowFDB           = "bridge -j fdb show"
	cmdShowBridgeVLAN    = "net show bridge vlan json"
	cmdShowSensors       = "net show system sensors json"

	cmdPending = "net pending"
	cmdCommit  = "net commit"
	cmdAbort   = "net abort"
	cmdDelAll  = "net del all"
)

var masterRe = regexp.MustCompile(`Master: ([A-Za-z0-9_-]+)\(`)

// Dialect speaks the legacy NCLU/vtysh command set.
type Dialect struct{}

// New creates a legacy dialect instance.
func New() *Dialect { return &Dialect{} }

// Name returns the canonical dialect identifier.
func (d *Dialect) Name() string { return dialectName }

// Detect matches any switch that still answers NCLU system queries.
func (d *Dialect) Detect(t ports.Transport, cfg entities.DeviceConfig) (bool, error) {
	output, err := t.Execute(cmdShowSystem, cfg.CommandTimeout)
	if err != nil {
		var cmdErr *errs.CommandError
		if errors.As(err, &cmdErr) {
			return false, nil
		}
		return false, err
	}
	return strings.Contains(output, "Cumulus"), nil
}

// executeJSON reissues a command once when the first read is not valid JSON,
// which happens when prompt fragments bleed into timed reads.
func executeJSON(t ports.Transport, cfg entities.DeviceConfig, cmd string) (string, error) {
	output, err := t.Execute(cmd, cfg.CommandTimeout)
	if err != nil {
		return "", err
	}
	if gjson.Valid(strings.TrimSpace(output)) {
		return strings.TrimSpace(output), nil
	}
	output, err = t.Execute(cmd, cfg.CommandTimeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

func (d *Dialect) Facts(t ports.Transport, cfg entities.DeviceConfig) (entities.FactsRecord, error) {
	var rec entities.FactsRecord
	hostname, err := t.Execute(cmdHostname, cfg.CommandTimeout)
	if err != nil {
		return rec, err
	}
	rec.Hostname = entities.String(strings.TrimSpace(hostname))

	system, err := t.Execute(cmdShowSystem, cfg.CommandTimeout)
	if err != nil {
		return rec, err
	}
	parseShowSystem(system, &rec)

	eeprom, err := t.Execute(cmdSyseeprom, cfg.CommandTimeout)
	if err != nil {
		return rec, err
	}
	rec.SerialNumber = parseSyseepromSerial(eeprom)

	interfaces, err := d.Interfaces(t, cfg)
	if err != nil {
		return rec, err
	}
	for name := range interfaces {
		rec.Interfaces = append(rec.Interfaces, name)
	}
	conv.SortNatural(rec.Interfaces)
	return rec, nil
}

func (d *Dialect) Interfaces(t ports.Transport, cfg entities.DeviceConfig) (map[string]entities.InterfaceRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowInterfacesAll)
	if err != nil {
		return nil, err
	}
	records, err := parseInterfacesJSON(raw)
	if err != nil {
		return nil, err
	}
	if !cfg.RetrieveDetails {
		return records, nil
	}
	location := d.deviceLocation(t, cfg)
	for name, rec := range records {
		output, err := t.Execute(fmt.Sprintf("vtysh -c 'show interface %s'", name), cfg.CommandTimeout)
		if err != nil {
			return nil, err
		}
		if flapped, ok := parseQuaggaFlapTime(output); ok {
			stamp := time.Date(flapped.Year(), flapped.Month(), flapped.Day(),
				flapped.Hour(), flapped.Minute(), flapped.Second(), flapped.Nanosecond(), location)
			rec.LastFlapped = entities.Float(time.Since(stamp).Seconds())
			records[name] = rec
		}
	}
	return records, nil
}

// deviceLocation resolves the switch's own timezone so flap timestamps are
// interpreted in the clock they were written with.
func (d *Dialect) deviceLocation(t ports.Transport, cfg entities.DeviceConfig) *time.Location {
	output, err := t.Execute("cat /etc/timezone", cfg.CommandTimeout)
	if err != nil {
		return time.UTC
	}
	location, err := time.LoadLocation(strings.TrimSpace(output))
	if err != nil {
		return time.UTC
	}
	return location
}

func (d *Dialect) InterfaceMode(t ports.Transport, cfg entities.DeviceConfig, name string) (string, error) {
	raw, err := executeJSON(t, cfg, fmt.Sprintf("net show interface %s json", name))
	if err != nil {
		return "", err
	}
	parsed, err := requireJSON("net show interface json", raw)
	if err != nil {
		return "", err
	}
	mode := parsed.Get("mode")
	if !mode.Exists() {
		return "", &errs.UnsupportedFormatError{Command: "net show interface json", Detail: "missing mode field"}
	}
	return textparse.TrimInterfaceMode(mode.String()), nil
}

func (d *Dialect) BGPNeighbors(t ports.Transport, cfg entities.DeviceConfig) ([]entities.BGPNeighborRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowBGPSummary)
	if err != nil {
		return nil, err
	}
	return parseBGPSummary(raw)
}

func (d *Dialect) LLDPNeighbors(t ports.Transport, cfg entities.DeviceConfig, iface string, detail bool) ([]entities.LLDPNeighborRecord, error) {
	command := cmdShowLLDP
	if iface != "" {
		command = fmt.Sprintf("net show lldp %s json", iface)
	}
	raw, err := executeJSON(t, cfg, command)
	if err != nil {
		return nil, err
	}
	records, err := parseLLDPJSON(raw)
	if err != nil {
		return nil, err
	}
	if !detail {
		return records, nil
	}
	// Detail needs the bond or bridge each local port belongs to.
	parents := make(map[string]entities.OptString)
	for i, rec := range records {
		parent, seen := parents[rec.LocalPort]
		if !seen {
			parent = d.parentInterface(t, cfg, rec.LocalPort)
			parents[rec.LocalPort] = parent
		}
		records[i].ParentInterface = parent
	}
	return records, nil
}

func (d *Dialect) parentInterface(t ports.Transport, cfg entities.DeviceConfig, name string) entities.OptString {
	raw, err := executeJSON(t, cfg, fmt.Sprintf("net show interface %s json", name))
	if err != nil {
		return entities.OptString{}
	}
	summary := gjson.Get(raw, "summary")
	if !summary.Exists() {
		return entities.OptString{}
	}
	if match := masterRe.FindStringSubmatch(summary.String()); match != nil {
		return entities.String(match[1])
	}
	return entities.String("")
}

func (d *Dialect) ARPTable(t ports.Transport, cfg entities.DeviceConfig) ([]entities.ARPEntryRecord, error) {
	output, err := t.Execute(cmdShowARP, cfg.CommandTimeout)
	if err != nil {
		return nil, err
	}
	return textparse.ParseARP(output), nil
}

func (d *Dialect) MACTable(t ports.Transport, cfg entities.DeviceConfig) ([]entities.MACEntryRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowFDB)
	if err != nil {
		return nil, err
	}
	return parseFDBJSON(raw)
}

func (d *Dialect) VLANs(t ports.Transport, cfg entities.DeviceConfig) ([]entities.VLANRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowBridgeVLAN)
	if err != nil {
		return nil, err
	}
	return parseBridgeVLANJSON(raw)
}

func (d *Dialect) Environment(t ports.Transport, cfg entities.DeviceConfig) ([]entities.SensorRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowSensors)
	if err != nil {
		return nil, err
	}
	return parseSensorsJSON(raw)
}

func (d *Dialect) NTPStats(t ports.Transport, cfg entities.DeviceConfig) ([]entities.NTPPeerRecord, error) {
	output, err := t.Execute(textparse.NTPQCommand, cfg.CommandTimeout)
	if err != nil {
		return nil, err
	}
	return textparse.ParseNTPQ(output)
}

func (d *Dialect) Ping(t ports.Transport, cfg entities.DeviceConfig, req entities.PingRequest) (entities.PingRecord, error) {
	req = req.WithDefaults()
	output, err := t.Execute(textparse.PingCommand(req), cfg.CommandTimeout)
	if err != nil {
		return entities.PingRecord{}, err
	}
	return textparse.ParsePing(output), nil
}

// Stage queues candidate lines through NCLU. A replace clears the pending
// view with net del all first; NCLU keeps both forms pending until commit.
func (d *Dialect) Stage(t ports.Transport, cfg entities.DeviceConfig, lines []string, replace bool) error {
	if replace {
		if _, err := t.Execute(cmdDelAll, cfg.CommandTimeout); err != nil {
			return err
		}
	}
	for _, line := range lines {
		output, err := t.Execute(line, cfg.CommandTimeout)
		if err != nil {
			return err
		}
		lowered := strings.ToLower(output)
		if strings.Contains(lowered, "error") || strings.Contains(lowered, "not found") {
			return &errs.CommandError{Command: line, Output: strings.TrimSpace(output)}
		}
	}
	return nil
}

// Diff returns the pending changes, trimmed of the command recap NCLU
// appends and of color escapes.
func (d *Dialect) Diff(t ports.Transport, cfg entities.DeviceConfig) (string, error) {
	output, err := t.Execute(cmdPending, cfg.CommandTimeout)
	if err != nil {
		return "", err
	}
	full := conv.StripANSI(output)
	trimmed := strings.TrimSpace(strings.SplitN(full, "net add/del commands", 2)[0])
	if trimmed == "" {
		return "", nil
	}
	return strings.TrimSpace(full), nil
}

// Apply commits the pending NCLU changes. NCLU has no transactional apply:
// a failure here may leave the switch partially configured, which the
// non-atomic CommitFailedError makes explicit.
func (d *Dialect) Apply(t ports.Transport, cfg entities.DeviceConfig, force bool) error {
	output, err := t.Execute(cmdCommit, cfg.CommandTimeout)
	if err != nil {
		return err
	}
	lowered := strings.ToLower(output)
	if strings.Contains(lowered, "error") || strings.Contains(lowered, "aborted") {
		return &errs.CommitFailedError{
			Dialect: dialectName,
			Reason:  strings.TrimSpace(conv.StripANSI(output)),
			Atomic:  false,
		}
	}
	return nil
}

func (d *Dialect) Abort(t ports.Transport, cfg entities.DeviceConfig) error {
	_, err := t.Execute(cmdAbort, cfg.CommandTimeout)
	return err
}

// Rollback is not offered on the legacy dialect: the device keeps no commit
// checkpoint this driver can trust.
func (d *Dialect) Rollback(t ports.Transport, cfg entities.DeviceConfig) error {
	return errs.ErrRollbackUnavailable
}

func (d *Dialect) SupportsRollback() bool { return false }
