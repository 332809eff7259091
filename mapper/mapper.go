// Package mapper translates the intermediate records produced by the dialect
// parsers into the vendor-neutral schema. Optional fields the device did not
// report become zero values here; structural inconsistencies (an entry with
// no primary key, a reference to a row that does not exist) become
// MappingError instead of being dropped.
package mapper

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/platform/conv"
	"github.com/napalm-go/cumulus/schema"
)

const vendor = "Nvidia"

// GlobalInstance is the routing-instance key used for the default VRF.
const GlobalInstance = "global"

// lastFlappedUnknown is the cross-vendor marker for "never observed".
const lastFlappedUnknown = -1.0

// normMAC renders a MAC in colon notation, passing through values the
// normalizer does not recognize so the caller still sees what the device sent.
func normMAC(mac string) string {
	if normalized, ok := conv.NormalizeMAC(mac); ok {
		return normalized
	}
	return mac
}

// Facts fills the identity struct. The switch does not report a domain, so
// the FQDN mirrors the hostname.
func Facts(rec entities.FactsRecord) (schema.Facts, error) {
	hostname := rec.Hostname.Or("")
	f := schema.Facts{
		Vendor:        vendor,
		Model:         rec.Model.Or(""),
		Hostname:      hostname,
		FQDN:          hostname,
		OSVersion:     rec.OSVersion.Or(""),
		SerialNumber:  rec.SerialNumber.Or(""),
		Uptime:        rec.UptimeSeconds.Or(0),
		InterfaceList: rec.Interfaces,
	}
	if f.InterfaceList == nil {
		f.InterfaceList = []string{}
	}
	conv.SortNatural(f.InterfaceList)
	return f, nil
}

// Interfaces keys the interface table by name.
func Interfaces(recs map[string]entities.InterfaceRecord) (map[string]schema.Interface, error) {
	out := make(map[string]schema.Interface, len(recs))
	for name, rec := range recs {
		if name == "" {
			return nil, &errs.MappingError{Getter: "interfaces", Detail: "interface entry without a name"}
		}
		out[name] = schema.Interface{
			IsUp:        rec.OperUp.Or(false),
			IsEnabled:   rec.AdminUp.Or(false),
			Description: rec.Description.Or(""),
			LastFlapped: rec.LastFlapped.Or(lastFlappedUnknown),
			Speed:       rec.SpeedMbps.Or(0),
			MTU:         int(rec.MTU.Or(0)),
			MACAddress:  normMAC(rec.MACAddress.Or("")),
		}
	}
	return out, nil
}

// InterfacesIP builds the per-interface address map from the CIDR strings the
// parsers collected. Interfaces without addresses are omitted, matching the
// cross-vendor contract.
func InterfacesIP(recs map[string]entities.InterfaceRecord) (map[string]schema.InterfaceIP, error) {
	out := make(map[string]schema.InterfaceIP)
	for name, rec := range recs {
		if len(rec.IPAddresses) == 0 {
			continue
		}
		if name == "" {
			return nil, &errs.MappingError{Getter: "interfaces_ip", Detail: "interface entry without a name"}
		}
		ifaceIP := schema.InterfaceIP{}
		for _, cidr := range rec.IPAddresses {
			addr, prefix, err := splitCIDR(cidr)
			if err != nil {
				return nil, &errs.MappingError{Getter: "interfaces_ip", Detail: fmt.Sprintf("%s: %v", name, err)}
			}
			family := "ipv4"
			if strings.Contains(addr, ":") {
				family = "ipv6"
			}
			if ifaceIP[family] == nil {
				ifaceIP[family] = map[string]schema.AddressDetail{}
			}
			ifaceIP[family][addr] = schema.AddressDetail{PrefixLength: prefix}
		}
		out[name] = ifaceIP
	}
	return out, nil
}

func splitCIDR(cidr string) (string, int, error) {
	addr, prefix, ok := strings.Cut(cidr, "/")
	if !ok {
		// A bare address gets the host prefix.
		if ip := net.ParseIP(cidr); ip != nil {
			if ip.To4() != nil {
				return cidr, 32, nil
			}
			return cidr, 128, nil
		}
		return "", 0, fmt.Errorf("invalid address %q", cidr)
	}
	n, err := strconv.Atoi(prefix)
	if err != nil || net.ParseIP(addr) == nil {
		return "", 0, fmt.Errorf("invalid address %q", cidr)
	}
	return addr, n, nil
}

// BGPNeighbors groups peers under the default routing instance, merging the
// per-family prefix counters of peers seen in more than one address family.
func BGPNeighbors(recs []entities.BGPNeighborRecord) (map[string]schema.BGPInstance, error) {
	instance := schema.BGPInstance{Peers: map[string]schema.BGPPeer{}}
	for _, rec := range recs {
		if rec.Peer == "" {
			return nil, &errs.MappingError{Getter: "bgp_neighbors", Detail: "peer entry without an address"}
		}
		if rec.RouterID.Known && instance.RouterID == "" {
			instance.RouterID = rec.RouterID.Value
		}
		peer, seen := instance.Peers[rec.Peer]
		if !seen {
			peer = schema.BGPPeer{
				LocalAS:       int(rec.LocalAS.Or(0)),
				RemoteAS:      int(rec.RemoteAS.Or(0)),
				RemoteID:      rec.RemoteID.Or(""),
				IsUp:          rec.Up.Or(false),
				IsEnabled:     rec.Enabled.Or(true),
				Description:   rec.Description.Or(""),
				Uptime:        int(rec.UptimeSeconds.Or(0)),
				AddressFamily: map[string]schema.BGPPrefixStats{},
			}
		}
		family := rec.AddressFamily
		if family == "" {
			family = "ipv4"
		}
		peer.AddressFamily[family] = schema.BGPPrefixStats{
			ReceivedPrefixes: int(rec.ReceivedPrefixes.Or(0)),
			AcceptedPrefixes: int(rec.AcceptedPrefixes.Or(rec.ReceivedPrefixes.Or(0))),
			SentPrefixes:     int(rec.SentPrefixes.Or(0)),
		}
		instance.Peers[rec.Peer] = peer
	}
	return map[string]schema.BGPInstance{GlobalInstance: instance}, nil
}

// LLDPNeighbors builds the brief per-port neighbor lists.
func LLDPNeighbors(recs []entities.LLDPNeighborRecord) (map[string][]schema.LLDPNeighbor, error) {
	out := make(map[string][]schema.LLDPNeighbor)
	for _, rec := range recs {
		if rec.LocalPort == "" {
			return nil, &errs.MappingError{Getter: "lldp_neighbors", Detail: "neighbor entry without a local port"}
		}
		out[rec.LocalPort] = append(out[rec.LocalPort], schema.LLDPNeighbor{
			Hostname: rec.RemoteSystemName.Or(""),
			Port:     rec.RemotePort.Or(""),
		})
	}
	return out, nil
}

// LLDPNeighborsDetail builds the full per-port neighbor lists.
func LLDPNeighborsDetail(recs []entities.LLDPNeighborRecord) (map[string][]schema.LLDPNeighborDetail, error) {
	out := make(map[string][]schema.LLDPNeighborDetail)
	for _, rec := range recs {
		if rec.LocalPort == "" {
			return nil, &errs.MappingError{Getter: "lldp_neighbors_detail", Detail: "neighbor entry without a local port"}
		}
		detail := schema.LLDPNeighborDetail{
			ParentInterface:         rec.ParentInterface.Or(""),
			RemoteChassisID:         normMAC(rec.RemoteChassisID.Or("")),
			RemoteSystemName:        rec.RemoteSystemName.Or(""),
			RemotePort:              rec.RemotePort.Or(""),
			RemotePortDescription:   rec.RemotePortDesc.Or(""),
			RemoteSystemDescription: rec.RemoteSystemDesc.Or(""),
			RemoteSystemCapab:       rec.RemoteCapab,
			RemoteSystemEnableCapab: rec.RemoteEnableCapab,
		}
		if detail.RemoteSystemCapab == nil {
			detail.RemoteSystemCapab = []string{}
		}
		if detail.RemoteSystemEnableCapab == nil {
			detail.RemoteSystemEnableCapab = []string{}
		}
		out[rec.LocalPort] = append(out[rec.LocalPort], detail)
	}
	return out, nil
}

// ARPTable flattens the neighbor table, defaulting the MAC of incomplete
// entries to all zeros.
func ARPTable(recs []entities.ARPEntryRecord) ([]schema.ARPEntry, error) {
	out := make([]schema.ARPEntry, 0, len(recs))
	for _, rec := range recs {
		ip := rec.IPAddress.Or("")
		if ip == "" {
			return nil, &errs.MappingError{Getter: "arp_table", Detail: "neighbor entry without an address"}
		}
		out = append(out, schema.ARPEntry{
			Interface:  rec.Interface.Or(""),
			MACAddress: normMAC(rec.MACAddress.Or("00:00:00:00:00:00")),
			IPAddress:  ip,
			Age:        rec.Age.Or(0),
		})
	}
	return out, nil
}

// MACTable flattens the forwarding table. The switch does not expose move
// counters, so those stay at their neutral values.
func MACTable(recs []entities.MACEntryRecord) ([]schema.MACTableEntry, error) {
	out := make([]schema.MACTableEntry, 0, len(recs))
	for _, rec := range recs {
		if rec.MACAddress == "" {
			return nil, &errs.MappingError{Getter: "mac_address_table", Detail: "forwarding entry without a MAC address"}
		}
		out = append(out, schema.MACTableEntry{
			MACAddress: normMAC(rec.MACAddress),
			Interface:  rec.Interface.Or(""),
			VLAN:       int(rec.VLAN.Or(0)),
			Static:     rec.Static.Or(false),
			Active:     rec.Active.Or(true),
			Moves:      0,
			LastMove:   0,
		})
	}
	return out, nil
}

// VLANs keys the bridge VLANs by ID, defaulting the name to the ID when the
// bridge does not carry one.
func VLANs(recs []entities.VLANRecord) (map[int]schema.VLAN, error) {
	out := make(map[int]schema.VLAN, len(recs))
	for _, rec := range recs {
		if rec.ID <= 0 {
			return nil, &errs.MappingError{Getter: "vlans", Detail: "vlan entry without an id"}
		}
		v := schema.VLAN{
			Name:       rec.Name.Or(strconv.Itoa(rec.ID)),
			Interfaces: rec.Interfaces,
		}
		if v.Interfaces == nil {
			v.Interfaces = []string{}
		}
		conv.SortNatural(v.Interfaces)
		out[rec.ID] = v
	}
	return out, nil
}

// Environment sorts sensor readings into the cross-vendor buckets. CPU and
// memory are not exposed through the sensor interface, so those sections
// stay empty rather than missing.
func Environment(recs []entities.SensorRecord) (schema.Environment, error) {
	env := schema.Environment{
		Fans:        map[string]schema.FanStatus{},
		Temperature: map[string]schema.TemperatureStatus{},
		Power:       map[string]schema.PowerStatus{},
		CPU:         map[int]schema.CPUUsage{},
	}
	for _, rec := range recs {
		if rec.Name == "" {
			return schema.Environment{}, &errs.MappingError{Getter: "environment", Detail: "sensor entry without a name"}
		}
		ok := strings.EqualFold(rec.State.Or("OK"), "OK")
		switch strings.ToLower(rec.Type) {
		case "fan":
			env.Fans[rec.Name] = schema.FanStatus{Status: ok}
		case "power":
			env.Power[rec.Name] = schema.PowerStatus{Status: ok}
		case "temp", "temperature":
			env.Temperature[rec.Name] = schema.TemperatureStatus{
				Temperature: rec.Input.Or(0),
				IsAlert:     !ok,
				IsCritical:  !ok && strings.EqualFold(rec.State.Or(""), "CRITICAL"),
			}
		}
	}
	return env, nil
}

// NTPStats converts the peer rows one to one.
func NTPStats(recs []entities.NTPPeerRecord) ([]schema.NTPStat, error) {
	out := make([]schema.NTPStat, 0, len(recs))
	for _, rec := range recs {
		if rec.Remote == "" {
			return nil, &errs.MappingError{Getter: "ntp_stats", Detail: "peer entry without a remote"}
		}
		out = append(out, schema.NTPStat{
			Remote:       rec.Remote,
			ReferenceID:  rec.ReferenceID.Or(""),
			Synchronized: rec.Synchronized,
			Stratum:      int(rec.Stratum.Or(0)),
			Type:         rec.Type.Or(""),
			When:         int(rec.When.Or(0)),
			HostPoll:     int(rec.HostPoll.Or(0)),
			Reachability: int(rec.Reachability.Or(0)),
			Delay:        rec.Delay.Or(0),
			Offset:       rec.Offset.Or(0),
			Jitter:       rec.Jitter.Or(0),
		})
	}
	return out, nil
}

// Ping turns a parsed ping run into the error-or-success shape.
func Ping(rec entities.PingRecord) schema.PingResult {
	if rec.Error != "" {
		return schema.PingResult{Error: rec.Error}
	}
	sent := int(rec.Sent.Or(0))
	received := int(rec.Received.Or(0))
	loss := 0
	if sent > received {
		loss = sent - received
	}
	probes := make([]schema.PingProbe, 0, len(rec.Probes))
	for _, p := range rec.Probes {
		probes = append(probes, schema.PingProbe{IPAddress: p.IPAddress, RTT: p.RTT})
	}
	return schema.PingResult{Success: &schema.PingSuccess{
		ProbesSent: sent,
		PacketLoss: loss,
		RTTMin:     rec.RTTMin.Or(0),
		RTTMax:     rec.RTTMax.Or(0),
		RTTAvg:     rec.RTTAvg.Or(0),
		RTTStddev:  rec.RTTStddev.Or(0),
		Results:    probes,
	}}
}
