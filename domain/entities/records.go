package entities

// Intermediate records produced by the dialect parsers. They mirror switch
// concepts without forcing the vendor-neutral shape yet; the mapper package
// turns them into schema values. Fields the device did not report stay
// unknown (see optional.go) so the mapper can apply defaults consistently.

// RawCommandResult captures one command round trip for diagnostics.
type RawCommandResult struct {
	Command   string
	Output    string
	ElapsedMs int64
	Failed    bool
}

// FactsRecord holds device identity information.
type FactsRecord struct {
	Hostname      OptString
	OSVersion     OptString
	Model         OptString
	SerialNumber  OptString
	UptimeSeconds OptFloat
	Interfaces    []string
}

// InterfaceRecord holds per-interface state as reported by the switch.
type InterfaceRecord struct {
	Name        string
	OperUp      OptBool
	AdminUp     OptBool
	Description OptString
	SpeedMbps   OptFloat
	MTU         OptInt
	MACAddress  OptString
	LastFlapped OptFloat
	Mode        OptString
	// IPAddresses holds CIDR strings (v4 and v6 mixed).
	IPAddresses []string
}

// BGPNeighborRecord holds a single BGP peer as reported by the routing stack.
type BGPNeighborRecord struct {
	Peer             string
	LocalAS          OptInt
	RemoteAS         OptInt
	RemoteID         OptString
	RouterID         OptString
	Up               OptBool
	Enabled          OptBool
	Description      OptString
	UptimeSeconds    OptInt
	AddressFamily    string
	ReceivedPrefixes OptInt
	AcceptedPrefixes OptInt
	SentPrefixes     OptInt
}

// LLDPNeighborRecord holds one remote system seen on a local port.
type LLDPNeighborRecord struct {
	LocalPort         string
	ParentInterface   OptString
	RemoteChassisID   OptString
	RemoteSystemName  OptString
	RemotePort        OptString
	RemotePortDesc    OptString
	RemoteSystemDesc  OptString
	RemoteCapab       []string
	RemoteEnableCapab []string
}

// ARPEntryRecord holds one neighbor-table entry.
type ARPEntryRecord struct {
	Interface  OptString
	MACAddress OptString
	IPAddress  OptString
	Age        OptFloat
}

// MACEntryRecord holds one bridge forwarding-table entry.
type MACEntryRecord struct {
	MACAddress string
	Interface  OptString
	VLAN       OptInt
	Static     OptBool
	Active     OptBool
}

// VLANRecord holds one bridge VLAN with its member interfaces.
type VLANRecord struct {
	ID         int
	Name       OptString
	Interfaces []string
}

// SensorRecord holds one environment sensor reading.
type SensorRecord struct {
	Name  string
	Type  string
	State OptString
	Input OptFloat
}

// NTPPeerRecord holds one line of ntpq peer output.
type NTPPeerRecord struct {
	Remote       string
	ReferenceID  OptString
	Stratum      OptInt
	Type         OptString
	When         OptInt
	HostPoll     OptInt
	Reachability OptInt
	Delay        OptFloat
	Offset       OptFloat
	Jitter       OptFloat
	Synchronized bool
}

// PingProbeRecord holds a single echo response.
type PingProbeRecord struct {
	IPAddress string
	RTT       float64
}

// PingRecord holds a parsed ping run.
type PingRecord struct {
	Error     string
	Sent      OptInt
	Received  OptInt
	RTTMin    OptFloat
	RTTAvg    OptFloat
	RTTMax    OptFloat
	RTTStddev OptFloat
	Probes    []PingProbeRecord
}
