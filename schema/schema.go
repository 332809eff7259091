// Package schema declares the vendor-neutral output model. Field names and
// types are a compatibility contract with the calling automation framework:
// every getter returns all of its declared keys, with empty maps rather than
// missing keys when the device reports nothing.
package schema

// Facts describes device identity.
type Facts struct {
	Vendor        string   `json:"vendor"`
	Model         string   `json:"model"`
	Hostname      string   `json:"hostname"`
	FQDN          string   `json:"fqdn"`
	OSVersion     string   `json:"os_version"`
	SerialNumber  string   `json:"serial_number"`
	Uptime        float64  `json:"uptime"`
	InterfaceList []string `json:"interface_list"`
}

// Interface describes one interface. Speed is in Mbps.
type Interface struct {
	IsUp        bool    `json:"is_up"`
	IsEnabled   bool    `json:"is_enabled"`
	Description string  `json:"description"`
	LastFlapped float64 `json:"last_flapped"`
	Speed       float64 `json:"speed"`
	MTU         int     `json:"mtu"`
	MACAddress  string  `json:"mac_address"`
}

// AddressDetail carries the prefix length of one assigned address.
type AddressDetail struct {
	PrefixLength int `json:"prefix_length"`
}

// InterfaceIP maps protocol ("ipv4"/"ipv6") to address to detail.
type InterfaceIP map[string]map[string]AddressDetail

// BGPPrefixStats counts prefixes per address family.
type BGPPrefixStats struct {
	ReceivedPrefixes int `json:"received_prefixes"`
	AcceptedPrefixes int `json:"accepted_prefixes"`
	SentPrefixes     int `json:"sent_prefixes"`
}

// BGPPeer describes one BGP session.
type BGPPeer struct {
	LocalAS       int                       `json:"local_as"`
	RemoteAS      int                       `json:"remote_as"`
	RemoteID      string                    `json:"remote_id"`
	IsUp          bool                      `json:"is_up"`
	IsEnabled     bool                      `json:"is_enabled"`
	Description   string                    `json:"description"`
	Uptime        int                       `json:"uptime"`
	AddressFamily map[string]BGPPrefixStats `json:"address_family"`
}

// BGPInstance groups the peers of one routing instance.
type BGPInstance struct {
	RouterID string             `json:"router_id"`
	Peers    map[string]BGPPeer `json:"peers"`
}

// LLDPNeighbor is the brief form of a discovered neighbor.
type LLDPNeighbor struct {
	Hostname string `json:"hostname"`
	Port     string `json:"port"`
}

// LLDPNeighborDetail is the full form of a discovered neighbor.
type LLDPNeighborDetail struct {
	ParentInterface         string   `json:"parent_interface"`
	RemoteChassisID         string   `json:"remote_chassis_id"`
	RemoteSystemName        string   `json:"remote_system_name"`
	RemotePort              string   `json:"remote_port"`
	RemotePortDescription   string   `json:"remote_port_description"`
	RemoteSystemDescription string   `json:"remote_system_description"`
	RemoteSystemCapab       []string `json:"remote_system_capab"`
	RemoteSystemEnableCapab []string `json:"remote_system_enable_capab"`
}

// ARPEntry is one neighbor-table row.
type ARPEntry struct {
	Interface  string  `json:"interface"`
	MACAddress string  `json:"mac"`
	IPAddress  string  `json:"ip"`
	Age        float64 `json:"age"`
}

// MACTableEntry is one bridge forwarding-table row.
type MACTableEntry struct {
	MACAddress string  `json:"mac"`
	Interface  string  `json:"interface"`
	VLAN       int     `json:"vlan"`
	Static     bool    `json:"static"`
	Active     bool    `json:"active"`
	Moves      int     `json:"moves"`
	LastMove   float64 `json:"last_move"`
}

// VLAN describes one bridge VLAN.
type VLAN struct {
	Name       string   `json:"name"`
	Interfaces []string `json:"interfaces"`
}

// FanStatus, PowerStatus, TemperatureStatus, CPUUsage and MemoryUsage follow
// the cross-vendor environment shape.
type FanStatus struct {
	Status bool `json:"status"`
}

type PowerStatus struct {
	Status bool `json:"status"`
}

type TemperatureStatus struct {
	Temperature float64 `json:"temperature"`
	IsAlert     bool    `json:"is_alert"`
	IsCritical  bool    `json:"is_critical"`
}

type CPUUsage struct {
	Usage float64 `json:"%usage"`
}

type MemoryUsage struct {
	AvailableRAM int64 `json:"available_ram"`
	UsedRAM      int64 `json:"used_ram"`
}

// Environment aggregates sensor state.
type Environment struct {
	Fans        map[string]FanStatus         `json:"fans"`
	Temperature map[string]TemperatureStatus `json:"temperature"`
	Power       map[string]PowerStatus       `json:"power"`
	CPU         map[int]CPUUsage             `json:"cpu"`
	Memory      MemoryUsage                  `json:"memory"`
}

// NTPStat is one upstream NTP peer.
type NTPStat struct {
	Remote       string  `json:"remote"`
	ReferenceID  string  `json:"referenceid"`
	Synchronized bool    `json:"synchronized"`
	Stratum      int     `json:"stratum"`
	Type         string  `json:"type"`
	When         int     `json:"when"`
	HostPoll     int     `json:"hostpoll"`
	Reachability int     `json:"reachability"`
	Delay        float64 `json:"delay"`
	Offset       float64 `json:"offset"`
	Jitter       float64 `json:"jitter"`
}

// PingProbe is one echo response.
type PingProbe struct {
	IPAddress string  `json:"ip_address"`
	RTT       float64 `json:"rtt"`
}

// PingSuccess summarizes a successful ping run.
type PingSuccess struct {
	ProbesSent int         `json:"probes_sent"`
	PacketLoss int         `json:"packet_loss"`
	RTTMin     float64     `json:"rtt_min"`
	RTTMax     float64     `json:"rtt_max"`
	RTTAvg     float64     `json:"rtt_avg"`
	RTTStddev  float64     `json:"rtt_stddev"`
	Results    []PingProbe `json:"results"`
}

// PingResult carries either an error string or a success summary.
type PingResult struct {
	Error   string       `json:"error,omitempty"`
	Success *PingSuccess `json:"success,omitempty"`
}
