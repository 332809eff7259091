package transport

import (
	"testing"

	"github.com/napalm-go/cumulus/domain/entities"
)

func TestCacheKey(t *testing.T) {
	config1 := entities.DeviceConfig{
		Transport: "ssh",
		Host:      "192.0.2.10",
		Username:  "cumulus",
		Password:  "secret",
	}
	config2 := entities.DeviceConfig{
		Transport: "telnet",
		Host:      "192.0.2.10",
		Username:  "cumulus",
		Password:  "secret",
	}
	config3 := entities.DeviceConfig{
		Transport: "ssh",
		Host:      "192.0.2.11",
		Username:  "cumulus",
		Password:  "secret",
	}

	// Same config produces the same key
	if cacheKey(config1) != cacheKey(config1) {
		t.Error("same config should produce the same key")
	}
	if cacheKey(config1) == cacheKey(config2) {
		t.Error("different transport should produce different keys")
	}
	if cacheKey(config1) == cacheKey(config3) {
		t.Error("different host should produce different keys")
	}
}

func TestCacheKeyIgnoresTimeouts(t *testing.T) {
	base := entities.DeviceConfig{Transport: "ssh", Host: "192.0.2.10", Username: "cumulus"}
	tuned := base
	tuned.Debug = true
	if cacheKey(base) != cacheKey(tuned) {
		t.Error("non-connection fields should not split the cache")
	}
}

func TestNewSelectsTransport(t *testing.T) {
	ssh := New(entities.DeviceConfig{Transport: entities.TransportSSH, Host: "h"}, nil)
	if _, ok := ssh.(*SSHClient); !ok {
		t.Errorf("expected SSHClient, got %T", ssh)
	}
	telnet := New(entities.DeviceConfig{Transport: entities.TransportTelnet, Host: "h"}, nil)
	if _, ok := telnet.(*TelnetClient); !ok {
		t.Errorf("expected TelnetClient, got %T", telnet)
	}
}
