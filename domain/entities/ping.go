package entities

// Ping defaults matching the cross-vendor contract.
const (
	PingDefaultTTL     = 255
	PingDefaultTimeout = 2
	PingDefaultSize    = 100
	PingDefaultCount   = 5
)

// PingRequest describes one ping invocation.
type PingRequest struct {
	Destination     string
	Source          string
	TTL             int
	Timeout         int
	Size            int
	Count           int
	VRF             string
	SourceInterface string
}

// WithDefaults fills unset numeric fields with the contract defaults.
func (p PingRequest) WithDefaults() PingRequest {
	if p.TTL == 0 {
		p.TTL = PingDefaultTTL
	}
	if p.Timeout == 0 {
		p.Timeout = PingDefaultTimeout
	}
	if p.Size == 0 {
		p.Size = PingDefaultSize
	}
	if p.Count == 0 {
		p.Count = PingDefaultCount
	}
	return p
}
