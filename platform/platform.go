// Package platform selects the command dialect a session speaks. The dialect
// is probed once at open and stays fixed for the session's lifetime.
package platform

import (
	"fmt"
	"strings"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/ports"
	"github.com/napalm-go/cumulus/platform/legacy"
	"github.com/napalm-go/cumulus/platform/nvue"
)

// Dialect defines the behaviour required to support one Cumulus command
// generation. Getter methods issue the dialect's commands over the transport
// and parse the output into intermediate records; they are read-only round
// trips with no side effects on the switch.
type Dialect interface {
	Name() string
	Detect(t ports.Transport, cfg entities.DeviceConfig) (bool, error)

	Facts(t ports.Transport, cfg entities.DeviceConfig) (entities.FactsRecord, error)
	Interfaces(t ports.Transport, cfg entities.DeviceConfig) (map[string]entities.InterfaceRecord, error)
	InterfaceMode(t ports.Transport, cfg entities.DeviceConfig, name string) (string, error)
	BGPNeighbors(t ports.Transport, cfg entities.DeviceConfig) ([]entities.BGPNeighborRecord, error)
	LLDPNeighbors(t ports.Transport, cfg entities.DeviceConfig, iface string, detail bool) ([]entities.LLDPNeighborRecord, error)
	ARPTable(t ports.Transport, cfg entities.DeviceConfig) ([]entities.ARPEntryRecord, error)
	MACTable(t ports.Transport, cfg entities.DeviceConfig) ([]entities.MACEntryRecord, error)
	VLANs(t ports.Transport, cfg entities.DeviceConfig) ([]entities.VLANRecord, error)
	Environment(t ports.Transport, cfg entities.DeviceConfig) ([]entities.SensorRecord, error)
	NTPStats(t ports.Transport, cfg entities.DeviceConfig) ([]entities.NTPPeerRecord, error)
	Ping(t ports.Transport, cfg entities.DeviceConfig, req entities.PingRequest) (entities.PingRecord, error)

	// Config primitives. Stage pushes candidate lines into the device's
	// candidate store without touching running state.
	Stage(t ports.Transport, cfg entities.DeviceConfig, lines []string, replace bool) error
	Diff(t ports.Transport, cfg entities.DeviceConfig) (string, error)
	Apply(t ports.Transport, cfg entities.DeviceConfig, force bool) error
	Abort(t ports.Transport, cfg entities.DeviceConfig) error
	Rollback(t ports.Transport, cfg entities.DeviceConfig) error
	SupportsRollback() bool
}

type factory func() Dialect

var factories = []factory{
	func() Dialect { return nvue.New() },
	func() Dialect { return legacy.New() },
}

// Get returns a fresh dialect by normalized name.
func Get(name string) (Dialect, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, f := range factories {
		d := f()
		if d.Name() == normalized {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unknown dialect: %s", name)
}

// Detect probes registered dialects in order until one matches. NVUE is
// probed first so that 5.x switches never fall through to legacy commands.
func Detect(t ports.Transport, cfg entities.DeviceConfig) (Dialect, error) {
	var lastErr error
	for _, f := range factories {
		d := f()
		matched, err := d.Detect(t, cfg)
		if err != nil {
			lastErr = err
			continue
		}
		if matched {
			return d, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to detect command dialect")
}
