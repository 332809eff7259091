package platform

import (
	"strings"
	"testing"
	"time"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
)

// scriptedTransport answers Execute from a fixed command/output table and
// records the order commands were issued in.
type scriptedTransport struct {
	replies  map[string]string
	failures map[string]error
	commands []string
}

func (st *scriptedTransport) Connect() error    { return nil }
func (st *scriptedTransport) Disconnect()       {}
func (st *scriptedTransport) IsConnected() bool { return true }
func (st *scriptedTransport) IsAlive() bool     { return true }

func (st *scriptedTransport) Execute(cmd string, _ time.Duration) (string, error) {
	st.commands = append(st.commands, cmd)
	if err, ok := st.failures[cmd]; ok {
		return "", err
	}
	if reply, ok := st.replies[cmd]; ok {
		return reply, nil
	}
	return "", &errs.CommandError{Command: cmd, Output: "command not found"}
}

func (st *scriptedTransport) ExecuteExpect(cmd, _ string, timeout time.Duration) (string, error) {
	return st.Execute(cmd, timeout)
}

func TestGet(t *testing.T) {
	for _, name := range []string{"nvue", "legacy"} {
		d, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q) returned error: %v", name, err)
		}
		if d.Name() != name {
			t.Errorf("Get(%q).Name() = %q", name, d.Name())
		}
	}
	if _, err := Get("ios"); err == nil {
		t.Error("unknown dialect should be rejected")
	}
}

func TestDetectPrefersNVUE(t *testing.T) {
	st := &scriptedTransport{replies: map[string]string{
		"nv show system":  "hostname: leaf01\nbuild: Cumulus Linux 5.4.0",
		"net show system": "Build Cumulus Linux 3.7.16",
	}}
	d, err := Detect(st, entities.DeviceConfig{})
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if d.Name() != "nvue" {
		t.Errorf("dialect = %q, want nvue", d.Name())
	}
	for _, cmd := range st.commands {
		if cmd == "net show system" {
			t.Error("legacy probe ran despite a positive NVUE match")
		}
	}
}

func TestDetectFallsBackToLegacy(t *testing.T) {
	st := &scriptedTransport{replies: map[string]string{
		"net show system": "Build............ Cumulus Linux 3.7.16",
	}}
	d, err := Detect(st, entities.DeviceConfig{})
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if d.Name() != "legacy" {
		t.Errorf("dialect = %q, want legacy", d.Name())
	}
}

func TestDetectNoMatch(t *testing.T) {
	st := &scriptedTransport{}
	if _, err := Detect(st, entities.DeviceConfig{}); err == nil {
		t.Error("Detect should fail when no dialect answers")
	}
}

func TestNVUELLDPDetailResolvesParentInterface(t *testing.T) {
	lldp := `{
		"swp1": {"neighbor": [
			{"system-name": "spine01", "port-id": "swp3"},
			{"system-name": "spine01", "port-id": "swp4"}
		]},
		"swp2": {"neighbor": [{"system-name": "spine02", "port-id": "swp5"}]}
	}`
	st := &scriptedTransport{replies: map[string]string{
		"nv show service lldp neighbor -o json": lldp,
		"nv show interface swp1 -o json":        `{"link": {"master": "bond0"}}`,
		"nv show interface swp2 -o json":        `{"bridge": {"domain": {"br_default": {}}}}`,
	}}
	d, err := Get("nvue")
	if err != nil {
		t.Fatal(err)
	}
	recs, err := d.LLDPNeighbors(st, entities.DeviceConfig{}, "", true)
	if err != nil {
		t.Fatalf("LLDPNeighbors returned error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	parents := map[string]string{}
	for _, rec := range recs {
		if !rec.ParentInterface.Known {
			t.Errorf("parent of %s left unknown", rec.LocalPort)
		}
		parents[rec.LocalPort] = rec.ParentInterface.Value
	}
	if parents["swp1"] != "bond0" {
		t.Errorf("swp1 parent = %q, want bond0", parents["swp1"])
	}
	if parents["swp2"] != "br_default" {
		t.Errorf("swp2 parent = %q, want br_default", parents["swp2"])
	}
	lookups := 0
	for _, cmd := range st.commands {
		if cmd == "nv show interface swp1 -o json" {
			lookups++
		}
	}
	if lookups != 1 {
		t.Errorf("swp1 membership looked up %d times, want 1", lookups)
	}
}

func TestNVUELLDPBriefSkipsParentLookup(t *testing.T) {
	st := &scriptedTransport{replies: map[string]string{
		"nv show service lldp neighbor -o json": `{"swp1": {"neighbor": [{"system-name": "spine01"}]}}`,
	}}
	d, err := Get("nvue")
	if err != nil {
		t.Fatal(err)
	}
	recs, err := d.LLDPNeighbors(st, entities.DeviceConfig{}, "", false)
	if err != nil {
		t.Fatalf("LLDPNeighbors returned error: %v", err)
	}
	if len(recs) != 1 || recs[0].ParentInterface.Known {
		t.Errorf("brief records should leave the parent unknown: %+v", recs)
	}
	for _, cmd := range st.commands {
		if strings.HasPrefix(cmd, "nv show interface") {
			t.Errorf("brief lookup issued %q", cmd)
		}
	}
}

func TestDetectSurfacesTransportFailure(t *testing.T) {
	timeout := &errs.CommandTimeoutError{Command: "nv show system", Timeout: time.Second}
	st := &scriptedTransport{failures: map[string]error{
		"nv show system":  timeout,
		"net show system": timeout,
	}}
	if _, err := Detect(st, entities.DeviceConfig{}); err == nil {
		t.Error("transport failures must not be swallowed as a negative probe")
	}
}
