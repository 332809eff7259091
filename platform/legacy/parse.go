package legacy

import (
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/platform/conv"
)

func requireJSON(command, raw string) (gjson.Result, error) {
	if !gjson.Valid(raw) {
		return gjson.Result{}, &errs.UnsupportedFormatError{Command: command, Detail: "not valid JSON"}
	}
	return gjson.Parse(raw), nil
}

// parseShowSystem extracts OS build, model and uptime from the tabular
// `net show system` output.
func parseShowSystem(output string, rec *entities.FactsRecord) {
	for _, line := range strings.Split(output, "\n") {
		lowered := strings.ToLower(line)
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch {
		case strings.Contains(lowered, "build"):
			rec.OSVersion = entities.String(fields[len(fields)-1])
			if len(fields) >= 3 {
				rec.Model = entities.String(strings.Join(fields[1:3], " "))
			}
		case strings.Contains(lowered, "uptime"):
			if secs, err := conv.UptimeSeconds(fields[len(fields)-1]); err == nil {
				rec.UptimeSeconds = entities.Float(secs)
			}
		}
	}
}

// parseSyseepromSerial pulls the serial number out of decode-syseeprom.
func parseSyseepromSerial(output string) entities.OptString {
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(strings.ToLower(line), "serial number") {
			fields := strings.Fields(line)
			if len(fields) > 0 {
				return entities.String(fields[len(fields)-1])
			}
		}
	}
	return entities.OptString{}
}

// parseInterfacesJSON decodes `net show interface all json`. The NCLU JSON
// reports a single linkstate, so admin and oper state move together, exactly
// as the upstream tooling treats them.
func parseInterfacesJSON(raw string) (map[string]entities.InterfaceRecord, error) {
	parsed, err := requireJSON(cmdShowInterfacesAll, raw)
	if err != nil {
		return nil, err
	}
	if !parsed.IsObject() {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowInterfacesAll, Detail: "expected a JSON object"}
	}
	records := make(map[string]entities.InterfaceRecord)
	parsed.ForEach(func(key, iface gjson.Result) bool {
		name := key.String()
		rec := entities.InterfaceRecord{Name: name}
		if v := iface.Get("linkstate"); v.Exists() {
			up := strings.EqualFold(v.String(), "UP")
			rec.OperUp = entities.Bool(up)
			rec.AdminUp = entities.Bool(up)
		}
		if v := iface.Get("summary"); v.Exists() {
			rec.Description = entities.String(v.String())
		}
		if v := iface.Get("speed"); v.Exists() && v.Type == gjson.String {
			if mbps, ok := conv.SpeedMbps(v.String()); ok {
				rec.SpeedMbps = entities.Float(mbps)
			}
		}
		if v := iface.Get("iface_obj.mac"); v.Exists() {
			if mac, ok := conv.NormalizeMAC(v.String()); ok {
				rec.MACAddress = entities.String(mac)
			}
		}
		if v := iface.Get("iface_obj.mtu"); v.Exists() {
			rec.MTU = entities.Int(v.Int())
		}
		if v := iface.Get("mode"); v.Exists() {
			rec.Mode = entities.String(strings.ToLower(v.String()))
		}
		iface.Get("iface_obj.ip_address.allentries").ForEach(func(_, addr gjson.Result) bool {
			rec.IPAddresses = append(rec.IPAddresses, addr.String())
			return true
		})
		records[name] = rec
		return true
	})
	return records, nil
}

var (
	quaggaTimeLayout = "2006/01/02 15:04:05.000"
)

// parseQuaggaFlapTime extracts the most recent link transition from
// `vtysh -c 'show interface <x>'` output. Returns false when the interface
// never flapped.
func parseQuaggaFlapTime(output string) (time.Time, bool) {
	var ups, downs time.Time
	var haveUps, haveDowns bool
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		var target *time.Time
		var have *bool
		switch {
		case strings.Contains(line, "Link ups"):
			target, have = &ups, &haveUps
		case strings.Contains(line, "Link downs"):
			target, have = &downs, &haveDowns
		default:
			continue
		}
		if strings.Contains(fields[4], "(never)") {
			continue
		}
		stamp, err := time.Parse(quaggaTimeLayout, fields[4]+" "+fields[5])
		if err != nil {
			continue
		}
		*target = stamp
		*have = true
	}
	switch {
	case haveUps && haveDowns:
		if ups.After(downs) {
			return ups, true
		}
		return downs, true
	case haveUps:
		return ups, true
	case haveDowns:
		return downs, true
	}
	return time.Time{}, false
}

// parseBGPSummary decodes FRR's `show ip bgp summary json` across the
// address families it reports.
func parseBGPSummary(raw string) ([]entities.BGPNeighborRecord, error) {
	parsed, err := requireJSON(cmdShowBGPSummary, raw)
	if err != nil {
		return nil, err
	}
	if !parsed.IsObject() {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowBGPSummary, Detail: "expected a JSON object"}
	}
	families := map[string]string{"ipv4Unicast": "ipv4", "ipv6Unicast": "ipv6"}
	var records []entities.BGPNeighborRecord
	for key, family := range families {
		section := parsed.Get(key)
		if !section.Exists() {
			continue
		}
		var routerID entities.OptString
		var localAS entities.OptInt
		if v := section.Get("routerId"); v.Exists() {
			routerID = entities.String(v.String())
		}
		if v := section.Get("as"); v.Exists() {
			localAS = entities.Int(v.Int())
		}
		section.Get("peers").ForEach(func(peerKey, peer gjson.Result) bool {
			rec := entities.BGPNeighborRecord{
				Peer:          peerKey.String(),
				RouterID:      routerID,
				LocalAS:       localAS,
				AddressFamily: family,
			}
			if v := peer.Get("remoteAs"); v.Exists() {
				rec.RemoteAS = entities.Int(v.Int())
			}
			if v := peer.Get("state"); v.Exists() {
				up := strings.EqualFold(v.String(), "Established")
				rec.Up = entities.Bool(up)
				rec.Enabled = entities.Bool(!strings.EqualFold(v.String(), "Idle (Admin)"))
			}
			if v := peer.Get("desc"); v.Exists() {
				rec.Description = entities.String(v.String())
			}
			if v := peer.Get("peerUptimeMsec"); v.Exists() {
				rec.UptimeSeconds = entities.Int(v.Int() / 1000)
			}
			if v := peer.Get("pfxRcd"); v.Exists() {
				rec.ReceivedPrefixes = entities.Int(v.Int())
				rec.AcceptedPrefixes = entities.Int(v.Int())
			}
			if v := peer.Get("pfxSnt"); v.Exists() {
				rec.SentPrefixes = entities.Int(v.Int())
			}
			records = append(records, rec)
			return true
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Peer < records[j].Peer })
	return records, nil
}

// parseLLDPJSON decodes lldpd's JSON as relayed by `net show lldp json`.
// Chassis and port entries pair up by index.
func parseLLDPJSON(raw string) ([]entities.LLDPNeighborRecord, error) {
	parsed, err := requireJSON(cmdShowLLDP, raw)
	if err != nil {
		return nil, err
	}
	var records []entities.LLDPNeighborRecord
	parsed.Get("lldp").ForEach(func(_, block gjson.Result) bool {
		block.Get("interface").ForEach(func(_, iface gjson.Result) bool {
			local := iface.Get("name").String()
			chassisList := iface.Get("chassis").Array()
			portList := iface.Get("port").Array()
			for idx, chassis := range chassisList {
				rec := entities.LLDPNeighborRecord{LocalPort: local}
				if v := chassis.Get("name.0.value"); v.Exists() {
					rec.RemoteSystemName = entities.String(v.String())
				}
				if v := chassis.Get("id.0.value"); v.Exists() {
					rec.RemoteChassisID = entities.String(v.String())
				}
				if v := chassis.Get("descr.0.value"); v.Exists() {
					rec.RemoteSystemDesc = entities.String(v.String())
				}
				chassis.Get("capability").ForEach(func(_, cap gjson.Result) bool {
					lowered := strings.ToLower(cap.Get("type").String())
					rec.RemoteCapab = append(rec.RemoteCapab, lowered)
					if cap.Get("enabled").Bool() {
						rec.RemoteEnableCapab = append(rec.RemoteEnableCapab, lowered)
					}
					return true
				})
				if idx < len(portList) {
					port := portList[idx]
					if v := port.Get("id.0.value"); v.Exists() {
						rec.RemotePort = entities.String(v.String())
					}
					if v := port.Get("descr.0.value"); v.Exists() {
						rec.RemotePortDesc = entities.String(v.String())
					}
				}
				records = append(records, rec)
			}
			return true
		})
		return true
	})
	return records, nil
}

// parseFDBJSON decodes iproute2 `bridge -j fdb show` output.
func parseFDBJSON(raw string) ([]entities.MACEntryRecord, error) {
	if !gjson.Valid(raw) {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowFDB, Detail: "not valid JSON"}
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowFDB, Detail: "expected a JSON array"}
	}
	var records []entities.MACEntryRecord
	parsed.ForEach(func(_, entry gjson.Result) bool {
		var rec entities.MACEntryRecord
		if v := entry.Get("mac"); v.Exists() {
			if mac, ok := conv.NormalizeMAC(v.String()); ok {
				rec.MACAddress = mac
			}
		}
		for _, path := range []string{"ifname", "dev"} {
			if v := entry.Get(path); v.Exists() {
				rec.Interface = entities.String(v.String())
				break
			}
		}
		if v := entry.Get("vlan"); v.Exists() {
			rec.VLAN = entities.Int(v.Int())
		}
		if v := entry.Get("state"); v.Exists() {
			state := v.String()
			rec.Static = entities.Bool(state == "permanent" || state == "static")
		} else {
			rec.Static = entities.Bool(false)
		}
		rec.Active = entities.Bool(true)
		records = append(records, rec)
		return true
	})
	return records, nil
}

// parseBridgeVLANJSON decodes `net show bridge vlan json`: a map of
// interface to vlan ranges.
func parseBridgeVLANJSON(raw string) ([]entities.VLANRecord, error) {
	parsed, err := requireJSON(cmdShowBridgeVLAN, raw)
	if err != nil {
		return nil, err
	}
	if !parsed.IsObject() {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowBridgeVLAN, Detail: "expected a JSON object"}
	}
	membership := make(map[int][]string)
	parsed.ForEach(func(key, ranges gjson.Result) bool {
		iface := key.String()
		ranges.ForEach(func(_, spec gjson.Result) bool {
			start := int(spec.Get("vlan").Int())
			end := start
			if v := spec.Get("vlanEnd"); v.Exists() {
				end = int(v.Int())
			}
			for vlan := start; vlan <= end; vlan++ {
				membership[vlan] = append(membership[vlan], iface)
			}
			return true
		})
		return true
	})
	records := make([]entities.VLANRecord, 0, len(membership))
	for id, interfaces := range membership {
		sort.Strings(interfaces)
		records = append(records, entities.VLANRecord{ID: id, Interfaces: interfaces})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// parseSensorsJSON decodes `net show system sensors json`.
func parseSensorsJSON(raw string) ([]entities.SensorRecord, error) {
	if !gjson.Valid(raw) {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowSensors, Detail: "not valid JSON"}
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowSensors, Detail: "expected a JSON array"}
	}
	var records []entities.SensorRecord
	parsed.ForEach(func(_, sensor gjson.Result) bool {
		rec := entities.SensorRecord{
			Name: sensor.Get("name").String(),
			Type: sensor.Get("type").String(),
		}
		if v := sensor.Get("state"); v.Exists() {
			rec.State = entities.String(strings.ToUpper(v.String()))
		}
		if v := sensor.Get("input"); v.Exists() {
			rec.Input = entities.Float(v.Float())
		}
		records = append(records, rec)
		return true
	})
	return records, nil
}
