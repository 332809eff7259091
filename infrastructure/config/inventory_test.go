package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeInventory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeInventory(t, `
username: cumulus
password: fleet-secret
use_sudo: true
connect_timeout: 15s
devices:
  - host: leaf01
  - host: leaf02
    username: admin
    transport: telnet
    dialect: legacy
`)
	inv, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(inv.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(inv.Devices))
	}
	leaf01 := inv.Devices[0]
	if leaf01.Username != "cumulus" || leaf01.Password != "fleet-secret" {
		t.Errorf("leaf01 credentials not inherited: %+v", leaf01)
	}
	if !leaf01.UseSudo {
		t.Error("leaf01 should inherit use_sudo")
	}
	if leaf01.Transport != "ssh" {
		t.Errorf("leaf01 transport = %q", leaf01.Transport)
	}
	if leaf01.ConnectTimeout != 15*time.Second {
		t.Errorf("leaf01 connect timeout = %v", leaf01.ConnectTimeout)
	}
	leaf02 := inv.Devices[1]
	if leaf02.Username != "admin" || leaf02.Transport != "telnet" || leaf02.Dialect != "legacy" {
		t.Errorf("leaf02 overrides lost: %+v", leaf02)
	}
}

func TestLoadRejectsMissingHost(t *testing.T) {
	path := writeInventory(t, `
username: cumulus
devices:
  - username: admin
`)
	if _, err := Load(path); err == nil {
		t.Error("device without host should be rejected")
	}
}

func TestLoadRejectsMissingUsername(t *testing.T) {
	path := writeInventory(t, `
devices:
  - host: leaf01
`)
	if _, err := Load(path); err == nil {
		t.Error("device without username should be rejected")
	}
}

func TestLoadRejectsBadTransport(t *testing.T) {
	path := writeInventory(t, `
username: cumulus
devices:
  - host: leaf01
    transport: serial
`)
	if _, err := Load(path); err == nil {
		t.Error("unknown transport should be rejected")
	}
}

func TestLoadRejectsBadDialect(t *testing.T) {
	path := writeInventory(t, `
username: cumulus
devices:
  - host: leaf01
    dialect: ios
`)
	if _, err := Load(path); err == nil {
		t.Error("unknown dialect should be rejected")
	}
}

func TestLoadRejectsEmptyInventory(t *testing.T) {
	path := writeInventory(t, `username: cumulus`)
	if _, err := Load(path); err == nil {
		t.Error("inventory without devices should be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should be reported")
	}
}
