// Package transport owns the raw device sessions: SSH and telnet CLI
// channels plus a read-only SNMP fallback. One command is in flight per
// session at any time; concurrent calls fail fast instead of interleaving.
package transport

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/ports"
)

// Client is the session contract used by the dialect layer. It matches
// ports.Transport.
type Client = ports.Transport

var (
	clientCache   = make(map[string]Client)
	clientCacheMu sync.Mutex
)

func cacheKey(cfg entities.DeviceConfig) string {
	keyData := struct {
		Transport string
		Host      string
		Port      int
		Username  string
		Password  string
	}{
		Transport: cfg.Transport,
		Host:      cfg.Host,
		Port:      cfg.EffectivePort(),
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	bytes, _ := json.Marshal(keyData)
	hash := sha256.Sum256(bytes)
	return hex.EncodeToString(hash[:])
}

// Get returns a cached client for the provided configuration or creates a
// new one. Useful for callers juggling a fleet of switches.
func Get(cfg entities.DeviceConfig, logger ports.Logger) Client {
	clientCacheMu.Lock()
	defer clientCacheMu.Unlock()
	key := cacheKey(cfg)
	if client, exists := clientCache[key]; exists {
		return client
	}
	client := New(cfg, logger)
	clientCache[key] = client
	return client
}

// CloseAll releases every cached client session.
func CloseAll() {
	clientCacheMu.Lock()
	defer clientCacheMu.Unlock()
	for key, client := range clientCache {
		client.Disconnect()
		delete(clientCache, key)
	}
}

// New creates an unconnected client for the configured transport.
func New(cfg entities.DeviceConfig, logger ports.Logger) Client {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	if cfg.Transport == entities.TransportTelnet {
		return NewTelnetClient(cfg, logger)
	}
	return NewSSHClient(cfg, logger)
}
