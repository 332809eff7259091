// Package config loads the YAML device inventory used by callers managing
// more than one switch.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/napalm-go/cumulus/domain/entities"
)

// Inventory holds the validated device list with all defaults applied.
type Inventory struct {
	Devices []entities.DeviceConfig
}

// inventoryYAML mirrors the file layout. Durations arrive as strings
// ("15s", "2m") because the YAML decoder has no native duration support.
type inventoryYAML struct {
	Transport      string       `yaml:"transport"`
	Username       string       `yaml:"username"`
	Password       string       `yaml:"password"`
	UseSudo        bool         `yaml:"use_sudo"`
	SudoPassword   string       `yaml:"sudo_password"`
	SNMPCommunity  string       `yaml:"snmp_community"`
	ConnectTimeout string       `yaml:"connect_timeout"`
	CommandTimeout string       `yaml:"command_timeout"`
	Devices        []deviceYAML `yaml:"devices"`
}

type deviceYAML struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Transport       string `yaml:"transport"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	UseSudo         *bool  `yaml:"use_sudo"`
	SudoPassword    string `yaml:"sudo_password"`
	SNMPCommunity   string `yaml:"snmp_community"`
	SNMPPort        int    `yaml:"snmp_port"`
	Dialect         string `yaml:"dialect"`
	RetrieveDetails bool   `yaml:"retrieve_details"`
	ConnectTimeout  string `yaml:"connect_timeout"`
	CommandTimeout  string `yaml:"command_timeout"`
	Debug           bool   `yaml:"debug"`
}

// Load reads and validates an inventory file, filling device entries with
// the file-level defaults.
func Load(yamlFile string) (*Inventory, error) {
	data, err := os.ReadFile(yamlFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory %s: %w", yamlFile, err)
	}
	var raw inventoryYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse inventory: %w", err)
	}

	if raw.Transport == "" {
		raw.Transport = entities.TransportSSH
	}
	raw.Transport = strings.ToLower(raw.Transport)
	if err := validateTransport(raw.Transport); err != nil {
		return nil, err
	}
	defaultConnect, err := parseTimeout(raw.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect_timeout: %w", err)
	}
	defaultCommand, err := parseTimeout(raw.CommandTimeout)
	if err != nil {
		return nil, fmt.Errorf("command_timeout: %w", err)
	}
	if len(raw.Devices) == 0 {
		return nil, fmt.Errorf("inventory has no devices")
	}

	inv := &Inventory{Devices: make([]entities.DeviceConfig, 0, len(raw.Devices))}
	for i, dev := range raw.Devices {
		if dev.Host == "" {
			return nil, fmt.Errorf("devices[%d]: host is required", i)
		}
		cfg := entities.DeviceConfig{
			Host:            dev.Host,
			Port:            dev.Port,
			Transport:       strings.ToLower(dev.Transport),
			Username:        dev.Username,
			Password:        dev.Password,
			UseSudo:         raw.UseSudo,
			SudoPassword:    dev.SudoPassword,
			SNMPCommunity:   dev.SNMPCommunity,
			SNMPPort:        dev.SNMPPort,
			Dialect:         strings.ToLower(dev.Dialect),
			RetrieveDetails: dev.RetrieveDetails,
			ConnectTimeout:  defaultConnect,
			CommandTimeout:  defaultCommand,
			Debug:           dev.Debug,
		}
		if cfg.Transport == "" {
			cfg.Transport = raw.Transport
		}
		if err := validateTransport(cfg.Transport); err != nil {
			return nil, fmt.Errorf("devices[%d]: %w", i, err)
		}
		if cfg.Username == "" {
			cfg.Username = raw.Username
		}
		if cfg.Username == "" {
			return nil, fmt.Errorf("devices[%d]: username is required", i)
		}
		if cfg.Password == "" {
			cfg.Password = raw.Password
		}
		if dev.UseSudo != nil {
			cfg.UseSudo = *dev.UseSudo
		}
		if cfg.SudoPassword == "" {
			cfg.SudoPassword = raw.SudoPassword
		}
		if cfg.SNMPCommunity == "" {
			cfg.SNMPCommunity = raw.SNMPCommunity
		}
		if dev.ConnectTimeout != "" {
			if cfg.ConnectTimeout, err = parseTimeout(dev.ConnectTimeout); err != nil {
				return nil, fmt.Errorf("devices[%d]: connect_timeout: %w", i, err)
			}
		}
		if dev.CommandTimeout != "" {
			if cfg.CommandTimeout, err = parseTimeout(dev.CommandTimeout); err != nil {
				return nil, fmt.Errorf("devices[%d]: command_timeout: %w", i, err)
			}
		}
		switch cfg.Dialect {
		case entities.DialectAuto, entities.DialectNVUE, entities.DialectLegacy:
		default:
			return nil, fmt.Errorf("devices[%d]: dialect %s is invalid, must be 'nvue', 'legacy' or empty", i, dev.Dialect)
		}
		inv.Devices = append(inv.Devices, cfg)
	}
	return inv, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func validateTransport(transport string) error {
	if transport != entities.TransportSSH && transport != entities.TransportTelnet {
		return fmt.Errorf("transport %s is invalid, must be 'ssh' or 'telnet'", transport)
	}
	return nil
}
