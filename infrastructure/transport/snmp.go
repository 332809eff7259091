package transport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/ports"
)

// Q-BRIDGE-MIB and IF-MIB columns used to rebuild the forwarding table when
// the CLI path is unavailable.
const (
	oidDot1qTpFdbPort      = ".1.3.6.1.2.1.17.7.1.2.2.1.2"
	oidDot1dBasePortIfIndx = ".1.3.6.1.2.1.17.1.4.1.2"
	oidIfName              = ".1.3.6.1.2.1.31.1.1.1.1"
)

// SNMPReader polls the bridge forwarding table over SNMP v2c. It is a
// read-only fallback for restricted accounts that cannot reach the CLI
// bridge commands.
type SNMPReader struct {
	cfg    entities.DeviceConfig
	logger ports.Logger
	client *gosnmp.GoSNMP
}

// NewSNMPReader creates a reader for the device's configured community.
func NewSNMPReader(cfg entities.DeviceConfig, logger ports.Logger) *SNMPReader {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	port := uint16(161)
	if cfg.SNMPPort > 0 {
		port = uint16(cfg.SNMPPort)
	}
	return &SNMPReader{
		cfg:    cfg,
		logger: logger,
		client: &gosnmp.GoSNMP{
			Target:    cfg.Host,
			Port:      port,
			Community: cfg.SNMPCommunity,
			Version:   gosnmp.Version2c,
			Timeout:   5 * time.Second,
			Retries:   1,
			Transport: "udp",
		},
	}
}

// Available reports whether the device config carries an SNMP community.
func (sr *SNMPReader) Available() bool {
	return sr.cfg.SNMPCommunity != ""
}

// MACTable walks dot1qTpFdbPort and resolves bridge port indexes to
// interface names.
func (sr *SNMPReader) MACTable() ([]entities.MACEntryRecord, error) {
	if err := sr.client.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect to %s: %w", sr.cfg.Host, err)
	}
	defer sr.client.Conn.Close()

	portNames, err := sr.portNames()
	if err != nil {
		return nil, err
	}

	var records []entities.MACEntryRecord
	err = sr.client.BulkWalk(oidDot1qTpFdbPort, func(pdu gosnmp.SnmpPDU) error {
		vlan, mac, ok := splitFdbIndex(pdu.Name)
		if !ok {
			return nil
		}
		rec := entities.MACEntryRecord{
			MACAddress: mac,
			VLAN:       entities.Int(vlan),
			Static:     entities.Bool(false),
			Active:     entities.Bool(true),
		}
		if bridgePort, ok := pduInt(pdu); ok {
			if name, known := portNames[bridgePort]; known {
				rec.Interface = entities.String(name)
			}
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snmp fdb walk on %s: %w", sr.cfg.Host, err)
	}
	sr.logger.Debug("snmp mac table collected", "host", sr.cfg.Host, "entries", len(records))
	return records, nil
}

// portNames maps bridge port numbers to interface names via
// dot1dBasePortIfIndex and ifName.
func (sr *SNMPReader) portNames() (map[int]string, error) {
	ifIndexByPort := make(map[int]int)
	err := sr.client.BulkWalk(oidDot1dBasePortIfIndx, func(pdu gosnmp.SnmpPDU) error {
		parts := strings.Split(pdu.Name, ".")
		port, convErr := strconv.Atoi(parts[len(parts)-1])
		if convErr != nil {
			return nil
		}
		if ifIndex, ok := pduInt(pdu); ok {
			ifIndexByPort[port] = ifIndex
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snmp base-port walk on %s: %w", sr.cfg.Host, err)
	}

	nameByIfIndex := make(map[int]string)
	err = sr.client.BulkWalk(oidIfName, func(pdu gosnmp.SnmpPDU) error {
		parts := strings.Split(pdu.Name, ".")
		ifIndex, convErr := strconv.Atoi(parts[len(parts)-1])
		if convErr != nil {
			return nil
		}
		if raw, ok := pdu.Value.([]byte); ok {
			nameByIfIndex[ifIndex] = string(raw)
		} else if s, ok := pdu.Value.(string); ok {
			nameByIfIndex[ifIndex] = s
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snmp ifname walk on %s: %w", sr.cfg.Host, err)
	}

	names := make(map[int]string, len(ifIndexByPort))
	for port, ifIndex := range ifIndexByPort {
		if name, ok := nameByIfIndex[ifIndex]; ok {
			names[port] = name
		}
	}
	return names, nil
}

// splitFdbIndex decodes <vlan>.<6 mac bytes> from a dot1qTpFdbPort OID.
func splitFdbIndex(oid string) (int64, string, bool) {
	suffix := strings.TrimPrefix(oid, oidDot1qTpFdbPort+".")
	parts := strings.Split(suffix, ".")
	if len(parts) != 7 {
		return 0, "", false
	}
	vlan, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", false
	}
	macParts := make([]string, 0, 6)
	for _, p := range parts[1:] {
		b, err := strconv.Atoi(p)
		if err != nil || b < 0 || b > 255 {
			return 0, "", false
		}
		macParts = append(macParts, fmt.Sprintf("%02x", b))
	}
	return vlan, strings.Join(macParts, ":"), true
}

func pduInt(pdu gosnmp.SnmpPDU) (int, bool) {
	switch v := pdu.Value.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	}
	return 0, false
}
