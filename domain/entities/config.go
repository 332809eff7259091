package entities

import "time"

// Transport names accepted by DeviceConfig.
const (
	TransportSSH    = "ssh"
	TransportTelnet = "telnet"
)

// Dialect names. The empty string means "detect at open".
const (
	DialectAuto   = ""
	DialectNVUE   = "nvue"
	DialectLegacy = "legacy"
)

// DeviceConfig defines the connection parameters for a single switch
type DeviceConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Transport     string `yaml:"transport"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	UseSudo       bool   `yaml:"use_sudo"`
	SudoPassword  string `yaml:"sudo_password"`
	SNMPCommunity string `yaml:"snmp_community"`
	SNMPPort      int    `yaml:"snmp_port"`
	Dialect       string `yaml:"dialect"`
	// RetrieveDetails enables the slow per-interface flap-time lookup.
	RetrieveDetails bool          `yaml:"retrieve_details"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	CommandTimeout  time.Duration `yaml:"command_timeout"`
	Debug           bool          `yaml:"debug"`
}

// EffectivePort returns the configured transport port or the protocol default.
func (dc DeviceConfig) EffectivePort() int {
	if dc.Port > 0 {
		return dc.Port
	}
	if dc.Transport == TransportTelnet {
		return 23
	}
	return 22
}

// EffectiveSudoPassword falls back to the login password, matching the
// behaviour switches expect for regular sudo users.
func (dc DeviceConfig) EffectiveSudoPassword() string {
	if dc.SudoPassword != "" {
		return dc.SudoPassword
	}
	return dc.Password
}
