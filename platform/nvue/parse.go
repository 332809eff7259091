package nvue

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/platform/conv"
)

// schemaVariant isolates the JSON paths that drifted across 5.x point
// releases. Adding support for a new release means adding one entry to
// variantTable, not touching the parsers.
type schemaVariant struct {
	// linkState extracts admin/oper state from one interface object.
	linkState func(iface gjson.Result) (admin, oper entities.OptBool)
	// macEntryType is the key carrying static/dynamic on mac-table rows.
	macEntryType string
}

// Early 5.x releases render link state as a single-key object under
// link.state; 5.4 and later carry explicit status strings.
var variantTable = map[string]schemaVariant{
	"5.0": {linkState: linkStateObject, macEntryType: "entry-type"},
	"5.1": {linkState: linkStateObject, macEntryType: "entry-type"},
	"5.2": {linkState: linkStateObject, macEntryType: "entry-type"},
}

var defaultVariant = schemaVariant{
	linkState:    linkStateStrings,
	macEntryType: "type",
}

func variantFor(version string) schemaVariant {
	for prefix, v := range variantTable {
		if strings.HasPrefix(version, prefix) {
			return v
		}
	}
	return defaultVariant
}

func linkStateObject(iface gjson.Result) (admin, oper entities.OptBool) {
	state := iface.Get("link.state")
	if !state.Exists() {
		return
	}
	up := false
	state.ForEach(func(key, _ gjson.Result) bool {
		up = strings.EqualFold(key.String(), "up")
		return false
	})
	oper = entities.Bool(up)
	admin = oper
	return
}

func linkStateStrings(iface gjson.Result) (admin, oper entities.OptBool) {
	if v := iface.Get("link.admin-status"); v.Exists() {
		admin = entities.Bool(strings.EqualFold(v.String(), "up"))
	}
	if v := iface.Get("link.oper-status"); v.Exists() {
		oper = entities.Bool(strings.EqualFold(v.String(), "up"))
	}
	return
}

// requireObject guards every strict decode: output whose top level is not the
// expected JSON shape is an UnsupportedFormat error, never a silent coercion.
func requireObject(command, raw string) (gjson.Result, error) {
	if !gjson.Valid(raw) {
		return gjson.Result{}, &errs.UnsupportedFormatError{Command: command, Detail: "not valid JSON"}
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return gjson.Result{}, &errs.UnsupportedFormatError{Command: command, Detail: "expected a JSON object"}
	}
	return parsed, nil
}

func parseSystem(raw string) (entities.FactsRecord, error) {
	var rec entities.FactsRecord
	parsed, err := requireObject(cmdShowSystem, raw)
	if err != nil {
		return rec, err
	}
	if v := parsed.Get("hostname"); v.Exists() {
		rec.Hostname = entities.String(v.String())
	}
	if v := parsed.Get("build"); v.Exists() {
		rec.OSVersion = entities.String(v.String())
	}
	if v := parsed.Get("uptime"); v.Exists() {
		if v.Type == gjson.Number {
			rec.UptimeSeconds = entities.Float(v.Float())
		} else if secs, err := conv.UptimeSeconds(v.String()); err == nil {
			rec.UptimeSeconds = entities.Float(secs)
		}
	}
	return rec, nil
}

func parsePlatform(raw string, rec *entities.FactsRecord) error {
	parsed, err := requireObject(cmdShowPlatform, raw)
	if err != nil {
		return err
	}
	for _, path := range []string{"hardware.model", "model"} {
		if v := parsed.Get(path); v.Exists() {
			rec.Model = entities.String(v.String())
			break
		}
	}
	for _, path := range []string{"hardware.serial-number", "serial-number", "serial"} {
		if v := parsed.Get(path); v.Exists() {
			rec.SerialNumber = entities.String(v.String())
			break
		}
	}
	return nil
}

func parseInterfaces(raw string, variant schemaVariant) (map[string]entities.InterfaceRecord, error) {
	parsed, err := requireObject(cmdShowInterfaces, raw)
	if err != nil {
		return nil, err
	}
	records := make(map[string]entities.InterfaceRecord)
	parsed.ForEach(func(key, iface gjson.Result) bool {
		name := key.String()
		rec := entities.InterfaceRecord{Name: name}
		rec.AdminUp, rec.OperUp = variant.linkState(iface)
		if v := iface.Get("description"); v.Exists() {
			rec.Description = entities.String(v.String())
		}
		if v := iface.Get("link.speed"); v.Exists() {
			if v.Type == gjson.Number {
				rec.SpeedMbps = entities.Float(conv.BpsToMbps(v.Int()))
			} else if mbps, ok := conv.SpeedMbps(v.String()); ok {
				rec.SpeedMbps = entities.Float(mbps)
			}
		}
		if v := iface.Get("link.mtu"); v.Exists() {
			rec.MTU = entities.Int(v.Int())
		}
		for _, path := range []string{"link.mac", "link.mac-address"} {
			if v := iface.Get(path); v.Exists() {
				if mac, ok := conv.NormalizeMAC(v.String()); ok {
					rec.MACAddress = entities.String(mac)
				}
				break
			}
		}
		if v := iface.Get("mode"); v.Exists() {
			rec.Mode = entities.String(strings.ToLower(v.String()))
		}
		iface.Get("ip.address").ForEach(func(addr, _ gjson.Result) bool {
			rec.IPAddresses = append(rec.IPAddresses, addr.String())
			return true
		})
		records[name] = rec
		return true
	})
	return records, nil
}

func parseBGP(summaryRaw, neighborRaw string) ([]entities.BGPNeighborRecord, error) {
	summary, err := requireObject(cmdShowBGP, summaryRaw)
	if err != nil {
		return nil, err
	}
	neighbors, err := requireObject(cmdShowBGPNeighbors, neighborRaw)
	if err != nil {
		return nil, err
	}
	var routerID entities.OptString
	var localAS entities.OptInt
	if v := summary.Get("router-id"); v.Exists() {
		routerID = entities.String(v.String())
	}
	for _, path := range []string{"autonomous-system", "local-as"} {
		if v := summary.Get(path); v.Exists() {
			localAS = entities.Int(v.Int())
			break
		}
	}

	var records []entities.BGPNeighborRecord
	neighbors.ForEach(func(key, peer gjson.Result) bool {
		rec := entities.BGPNeighborRecord{
			Peer:          key.String(),
			RouterID:      routerID,
			LocalAS:       localAS,
			AddressFamily: "ipv4",
		}
		if strings.Contains(key.String(), ":") {
			rec.AddressFamily = "ipv6"
		}
		if v := peer.Get("remote-as"); v.Exists() {
			rec.RemoteAS = entities.Int(v.Int())
		}
		if v := peer.Get("router-id"); v.Exists() {
			rec.RemoteID = entities.String(v.String())
		}
		for _, path := range []string{"state", "session-state"} {
			if v := peer.Get(path); v.Exists() {
				rec.Up = entities.Bool(strings.EqualFold(v.String(), "established"))
				break
			}
		}
		if v := peer.Get("admin-status"); v.Exists() {
			rec.Enabled = entities.Bool(!strings.EqualFold(v.String(), "shutdown"))
		}
		if v := peer.Get("description"); v.Exists() {
			rec.Description = entities.String(v.String())
		}
		if v := peer.Get("uptime"); v.Exists() {
			if v.Type == gjson.Number {
				rec.UptimeSeconds = entities.Int(v.Int())
			} else if secs, err := conv.UptimeSeconds(v.String()); err == nil {
				rec.UptimeSeconds = entities.Int(int64(secs))
			}
		}
		af := peer.Get("afi-safi.ipv4-unicast")
		if strings.Contains(key.String(), ":") {
			if v6 := peer.Get("afi-safi.ipv6-unicast"); v6.Exists() {
				af = v6
			}
		}
		if af.Exists() {
			if v := af.Get("received-routes"); v.Exists() {
				rec.ReceivedPrefixes = entities.Int(v.Int())
			}
			if v := af.Get("accepted-routes"); v.Exists() {
				rec.AcceptedPrefixes = entities.Int(v.Int())
			}
			for _, path := range []string{"sent-routes", "advertised-routes"} {
				if v := af.Get(path); v.Exists() {
					rec.SentPrefixes = entities.Int(v.Int())
					break
				}
			}
		}
		records = append(records, rec)
		return true
	})
	return records, nil
}

func parseLLDP(raw string) ([]entities.LLDPNeighborRecord, error) {
	parsed, err := requireObject(cmdShowLLDP, raw)
	if err != nil {
		return nil, err
	}
	var records []entities.LLDPNeighborRecord
	parsed.ForEach(func(port, neighbors gjson.Result) bool {
		list := neighbors
		if neighbors.IsObject() {
			if inner := neighbors.Get("neighbor"); inner.Exists() {
				list = inner
			}
		}
		list.ForEach(func(_, n gjson.Result) bool {
			rec := entities.LLDPNeighborRecord{LocalPort: port.String()}
			if v := n.Get("chassis-id"); v.Exists() {
				rec.RemoteChassisID = entities.String(v.String())
			}
			if v := n.Get("system-name"); v.Exists() {
				rec.RemoteSystemName = entities.String(v.String())
			}
			if v := n.Get("port-id"); v.Exists() {
				rec.RemotePort = entities.String(v.String())
			}
			if v := n.Get("port-description"); v.Exists() {
				rec.RemotePortDesc = entities.String(v.String())
			}
			if v := n.Get("system-description"); v.Exists() {
				rec.RemoteSystemDesc = entities.String(v.String())
			}
			n.Get("capabilities").ForEach(func(capName, cap gjson.Result) bool {
				lowered := strings.ToLower(capName.String())
				rec.RemoteCapab = append(rec.RemoteCapab, lowered)
				if cap.Get("enabled").Bool() {
					rec.RemoteEnableCapab = append(rec.RemoteEnableCapab, lowered)
				}
				return true
			})
			records = append(records, rec)
			return true
		})
		return true
	})
	return records, nil
}

// parseIPNeigh decodes iproute2 JSON neighbor output (ip -j neigh show).
func parseIPNeigh(raw string) ([]entities.ARPEntryRecord, error) {
	if !gjson.Valid(raw) {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowARP, Detail: "not valid JSON"}
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil, &errs.UnsupportedFormatError{Command: cmdShowARP, Detail: "expected a JSON array"}
	}
	var records []entities.ARPEntryRecord
	parsed.ForEach(func(_, entry gjson.Result) bool {
		var rec entities.ARPEntryRecord
		if v := entry.Get("dst"); v.Exists() {
			rec.IPAddress = entities.String(v.String())
		}
		if v := entry.Get("dev"); v.Exists() {
			rec.Interface = entities.String(v.String())
		}
		if v := entry.Get("lladdr"); v.Exists() {
			if mac, ok := conv.NormalizeMAC(v.String()); ok {
				rec.MACAddress = entities.String(mac)
			}
		} else {
			// incomplete entry, still reported with the all-zero MAC
			rec.MACAddress = entities.String("00:00:00:00:00:00")
		}
		rec.Age = entities.Float(0)
		records = append(records, rec)
		return true
	})
	return records, nil
}

func parseMACTable(raw string, variant schemaVariant) ([]entities.MACEntryRecord, error) {
	parsed, err := requireObject(cmdShowMACTable, raw)
	if err != nil {
		return nil, err
	}
	var records []entities.MACEntryRecord
	parsed.ForEach(func(_, entry gjson.Result) bool {
		var rec entities.MACEntryRecord
		for _, path := range []string{"mac-address", "address"} {
			if v := entry.Get(path); v.Exists() {
				if mac, ok := conv.NormalizeMAC(v.String()); ok {
					rec.MACAddress = mac
				}
				break
			}
		}
		for _, path := range []string{"interface", "egress-port"} {
			if v := entry.Get(path); v.Exists() {
				rec.Interface = entities.String(v.String())
				break
			}
		}
		if v := entry.Get("vlan"); v.Exists() {
			rec.VLAN = entities.Int(v.Int())
		}
		if v := entry.Get(variant.macEntryType); v.Exists() {
			rec.Static = entities.Bool(strings.EqualFold(v.String(), "static") ||
				strings.EqualFold(v.String(), "permanent"))
		}
		rec.Active = entities.Bool(true)
		records = append(records, rec)
		return true
	})
	return records, nil
}

func parseVLANs(raw string) ([]entities.VLANRecord, error) {
	parsed, err := requireObject(cmdShowVLANs, raw)
	if err != nil {
		return nil, err
	}
	var records []entities.VLANRecord
	parsed.ForEach(func(key, vlan gjson.Result) bool {
		id, err := strconv.Atoi(key.String())
		if err != nil {
			return true
		}
		rec := entities.VLANRecord{ID: id}
		if v := vlan.Get("name"); v.Exists() {
			rec.Name = entities.String(v.String())
		}
		ports := vlan.Get("ports")
		if ports.IsObject() {
			ports.ForEach(func(port, _ gjson.Result) bool {
				rec.Interfaces = append(rec.Interfaces, port.String())
				return true
			})
		} else if ports.IsArray() {
			ports.ForEach(func(_, port gjson.Result) bool {
				rec.Interfaces = append(rec.Interfaces, port.String())
				return true
			})
		}
		sort.Strings(rec.Interfaces)
		records = append(records, rec)
		return true
	})
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func parseEnvironment(raw string) ([]entities.SensorRecord, error) {
	parsed, err := requireObject(cmdShowEnvironment, raw)
	if err != nil {
		return nil, err
	}
	var records []entities.SensorRecord
	groups := map[string]string{"fan": "fan", "temperature": "temp", "psu": "power", "power": "power"}
	for group, sensorType := range groups {
		parsed.Get(group).ForEach(func(name, sensor gjson.Result) bool {
			rec := entities.SensorRecord{Name: name.String(), Type: sensorType}
			if v := sensor.Get("state"); v.Exists() {
				rec.State = entities.String(strings.ToUpper(v.String()))
			}
			for _, path := range []string{"current", "input"} {
				if v := sensor.Get(path); v.Exists() {
					rec.Input = entities.Float(v.Float())
					break
				}
			}
			records = append(records, rec)
			return true
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Type != records[j].Type {
			return records[i].Type < records[j].Type
		}
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// parseHistoryRevisions extracts rev_id values from nv config history output,
// newest first.
func parseHistoryRevisions(raw string) []string {
	var revs []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "rev_id:") {
			continue
		}
		rev := strings.Trim(strings.TrimSpace(strings.TrimPrefix(trimmed, "rev_id:")), "'")
		if rev != "" {
			revs = append(revs, rev)
		}
	}
	return revs
}
