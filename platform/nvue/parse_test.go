package nvue

import (
	"errors"
	"testing"

	"github.com/napalm-go/cumulus/domain/errs"
)

func TestParseSystem(t *testing.T) {
	raw := `{
  "hostname": "leaf01",
  "build": "Cumulus Linux 5.4.0",
  "uptime": 93784
}`
	rec, err := parseSystem(raw)
	if err != nil {
		t.Fatalf("parseSystem returned error: %v", err)
	}
	if rec.Hostname.Or("") != "leaf01" {
		t.Errorf("hostname = %q", rec.Hostname.Or(""))
	}
	if rec.OSVersion.Or("") != "Cumulus Linux 5.4.0" {
		t.Errorf("os version = %q", rec.OSVersion.Or(""))
	}
	if rec.UptimeSeconds.Or(-1) != 93784 {
		t.Errorf("uptime = %v", rec.UptimeSeconds.Or(-1))
	}
}

func TestParseSystemRejectsNonJSON(t *testing.T) {
	_, err := parseSystem("command not found")
	var ufe *errs.UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestParsePlatform(t *testing.T) {
	raw := `{
  "hardware": {
    "model": "VX",
    "serial-number": "50:54:00:00:00:11"
  }
}`
	rec, err := parseSystem(`{"hostname": "leaf01"}`)
	if err != nil {
		t.Fatal(err)
	}
	if err := parsePlatform(raw, &rec); err != nil {
		t.Fatalf("parsePlatform returned error: %v", err)
	}
	if rec.Model.Or("") != "VX" {
		t.Errorf("model = %q", rec.Model.Or(""))
	}
	if rec.SerialNumber.Or("") != "50:54:00:00:00:11" {
		t.Errorf("serial = %q", rec.SerialNumber.Or(""))
	}
}

func TestParseInterfacesStatusStrings(t *testing.T) {
	raw := `{
  "swp1": {
    "description": "to spine01",
    "link": {
      "admin-status": "up",
      "oper-status": "up",
      "speed": "10G",
      "mtu": 9216,
      "mac": "00:11:22:33:44:55"
    },
    "mode": "trunk",
    "ip": {"address": {"10.0.0.1/31": {}}}
  },
  "swp2": {
    "link": {
      "admin-status": "up",
      "oper-status": "down"
    }
  }
}`
	records, err := parseInterfaces(raw, defaultVariant)
	if err != nil {
		t.Fatalf("parseInterfaces returned error: %v", err)
	}
	swp1 := records["swp1"]
	if !swp1.AdminUp.Or(false) || !swp1.OperUp.Or(false) {
		t.Error("swp1 should be admin and oper up")
	}
	if swp1.SpeedMbps.Or(0) != 10000 {
		t.Errorf("swp1 speed = %v, want 10000", swp1.SpeedMbps.Or(0))
	}
	if swp1.MTU.Or(0) != 9216 {
		t.Errorf("swp1 mtu = %v", swp1.MTU.Or(0))
	}
	if swp1.Description.Or("") != "to spine01" {
		t.Errorf("swp1 description = %q", swp1.Description.Or(""))
	}
	if len(swp1.IPAddresses) != 1 || swp1.IPAddresses[0] != "10.0.0.1/31" {
		t.Errorf("swp1 addresses = %v", swp1.IPAddresses)
	}
	swp2 := records["swp2"]
	if !swp2.AdminUp.Or(false) || swp2.OperUp.Or(true) {
		t.Error("swp2 should be admin up and oper down")
	}
	if swp2.SpeedMbps.Known {
		t.Error("swp2 speed should stay unknown")
	}
}

func TestParseInterfacesLinkStateObject(t *testing.T) {
	raw := `{
  "swp1": {
    "link": {
      "state": {"up": {}},
      "speed": 10000000000
    }
  }
}`
	records, err := parseInterfaces(raw, variantFor("5.2.1"))
	if err != nil {
		t.Fatal(err)
	}
	swp1 := records["swp1"]
	if !swp1.OperUp.Or(false) {
		t.Error("swp1 should be up from the link.state object")
	}
	if swp1.SpeedMbps.Or(0) != 10000 {
		t.Errorf("numeric bps speed = %v, want 10000", swp1.SpeedMbps.Or(0))
	}
}

func TestVariantFor(t *testing.T) {
	if variantFor("5.1.0").macEntryType != "entry-type" {
		t.Error("5.1 should use the early mac-table key")
	}
	if variantFor("5.4.0").macEntryType != "type" {
		t.Error("5.4 should use the default mac-table key")
	}
	if variantFor("").macEntryType != "type" {
		t.Error("unknown versions fall back to the default variant")
	}
}

func TestParseBGP(t *testing.T) {
	summary := `{
  "router-id": "10.10.10.1",
  "autonomous-system": 65101
}`
	neighbors := `{
  "10.0.0.0": {
    "remote-as": 65199,
    "state": "established",
    "uptime": 7205,
    "afi-safi": {
      "ipv4-unicast": {
        "received-routes": 12,
        "accepted-routes": 12,
        "sent-routes": 4
      }
    }
  },
  "fe80::1": {
    "remote-as": 65200,
    "state": "idle"
  }
}`
	records, err := parseBGP(summary, neighbors)
	if err != nil {
		t.Fatalf("parseBGP returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 peers, got %d", len(records))
	}
	byPeer := map[string]int{}
	for i, rec := range records {
		byPeer[rec.Peer] = i
	}
	v4 := records[byPeer["10.0.0.0"]]
	if v4.LocalAS.Or(0) != 65101 || v4.RemoteAS.Or(0) != 65199 {
		t.Errorf("AS pair = %v/%v", v4.LocalAS.Or(0), v4.RemoteAS.Or(0))
	}
	if !v4.Up.Or(false) {
		t.Error("established peer should be up")
	}
	if v4.ReceivedPrefixes.Or(0) != 12 || v4.SentPrefixes.Or(0) != 4 {
		t.Errorf("prefix stats = %v/%v", v4.ReceivedPrefixes.Or(0), v4.SentPrefixes.Or(0))
	}
	if v4.UptimeSeconds.Or(0) != 7205 {
		t.Errorf("uptime = %v", v4.UptimeSeconds.Or(0))
	}
	v6 := records[byPeer["fe80::1"]]
	if v6.AddressFamily != "ipv6" {
		t.Errorf("address family = %q", v6.AddressFamily)
	}
	if v6.Up.Or(true) {
		t.Error("idle peer should be down")
	}
}

func TestParseLLDP(t *testing.T) {
	raw := `{
  "swp1": {
    "neighbor": {
      "spine01": {
        "chassis-id": "00:11:22:33:44:55",
        "system-name": "spine01",
        "port-id": "swp3",
        "port-description": "to leaf01",
        "system-description": "Cumulus Linux",
        "capabilities": {
          "bridge": {"enabled": true},
          "router": {"enabled": false}
        }
      }
    }
  }
}`
	records, err := parseLLDP(raw)
	if err != nil {
		t.Fatalf("parseLLDP returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 neighbor, got %d", len(records))
	}
	rec := records[0]
	if rec.LocalPort != "swp1" || rec.RemoteSystemName.Or("") != "spine01" || rec.RemotePort.Or("") != "swp3" {
		t.Errorf("unexpected neighbor: %+v", rec)
	}
	if len(rec.RemoteCapab) != 2 || len(rec.RemoteEnableCapab) != 1 || rec.RemoteEnableCapab[0] != "bridge" {
		t.Errorf("capabilities = %v enabled=%v", rec.RemoteCapab, rec.RemoteEnableCapab)
	}
}

func TestParseIPNeigh(t *testing.T) {
	raw := `[
  {"dst": "10.0.0.2", "dev": "swp1", "lladdr": "aa:bb:cc:dd:ee:ff", "state": ["REACHABLE"]},
  {"dst": "10.0.0.3", "dev": "swp2", "state": ["INCOMPLETE"]}
]`
	records, err := parseIPNeigh(raw)
	if err != nil {
		t.Fatalf("parseIPNeigh returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(records))
	}
	if records[0].MACAddress.Or("") != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("mac = %q", records[0].MACAddress.Or(""))
	}
	if records[1].MACAddress.Or("") != "00:00:00:00:00:00" {
		t.Error("incomplete entry should carry the all-zero MAC")
	}
}

func TestParseMACTable(t *testing.T) {
	raw := `{
  "0": {"mac-address": "aa:bb:cc:dd:ee:01", "interface": "swp1", "vlan": 10, "type": "dynamic"},
  "1": {"mac-address": "aa:bb:cc:dd:ee:02", "interface": "swp2", "vlan": 20, "type": "static"}
}`
	records, err := parseMACTable(raw, defaultVariant)
	if err != nil {
		t.Fatalf("parseMACTable returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(records))
	}
	static := 0
	for _, rec := range records {
		if rec.Static.Or(false) {
			static++
		}
	}
	if static != 1 {
		t.Errorf("expected 1 static entry, got %d", static)
	}
}

func TestParseVLANs(t *testing.T) {
	raw := `{
  "10": {"name": "users", "ports": {"swp1": {}, "swp2": {}}},
  "20": {"ports": ["swp3"]}
}`
	records, err := parseVLANs(raw)
	if err != nil {
		t.Fatalf("parseVLANs returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 VLANs, got %d", len(records))
	}
	if records[0].ID != 10 || records[0].Name.Or("") != "users" || len(records[0].Interfaces) != 2 {
		t.Errorf("vlan 10 = %+v", records[0])
	}
	if records[1].ID != 20 || records[1].Name.Known {
		t.Errorf("vlan 20 = %+v", records[1])
	}
}

func TestParseEnvironment(t *testing.T) {
	raw := `{
  "fan": {"Fan1": {"state": "ok", "current": 8000}},
  "temperature": {"CPU temp": {"state": "ok", "current": 42.5}},
  "psu": {"PSU1": {"state": "failed"}}
}`
	records, err := parseEnvironment(raw)
	if err != nil {
		t.Fatalf("parseEnvironment returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 sensors, got %d", len(records))
	}
	types := map[string]int{}
	for _, rec := range records {
		types[rec.Type]++
	}
	if types["fan"] != 1 || types["temp"] != 1 || types["power"] != 1 {
		t.Errorf("sensor types = %v", types)
	}
}

func TestParseHistoryRevisions(t *testing.T) {
	raw := `- date: 2024-03-02 10:00:00
  rev_id: '12'
  user: cumulus
- date: 2024-03-01 09:00:00
  rev_id: '11'
  user: cumulus
`
	revs := parseHistoryRevisions(raw)
	if len(revs) != 2 || revs[0] != "12" || revs[1] != "11" {
		t.Errorf("revisions = %v", revs)
	}
}
