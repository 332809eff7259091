// Package textparse parses the Linux command output shared by both dialects:
// ntpq peers, ping summaries and a few helpers that do not depend on the
// Cumulus command generation.
package textparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
)

// NTPQCommand lists upstream NTP peers in the classic tabular form.
const NTPQCommand = "ntpq -np"

var (
	ipv4Re     = regexp.MustCompile(`(\d+\.\d+\.\d+\.\d+)`)
	rttLineRe  = regexp.MustCompile(`([\d.]+)/([\d.]+)/([\d.]+)/([\d.]+)`)
	probeRe    = regexp.MustCompile(`from\s([\d.]+).*time=([\d.]+)`)
	txSummryRe = regexp.MustCompile(`(\d+)\s+packets transmitted,\s+(\d+)\s+received`)
)

// ParseNTPQ parses `ntpq -np` output. The first two lines are headers;
// ill-formed peer lines become records with unknown values rather than being
// dropped.
func ParseNTPQ(output string) ([]entities.NTPPeerRecord, error) {
	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		return nil, &errs.UnsupportedFormatError{Command: NTPQCommand, Detail: "missing header lines"}
	}
	var records []entities.NTPPeerRecord
	for _, line := range lines[2:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)
		rec := entities.NTPPeerRecord{Synchronized: strings.HasPrefix(trimmed, "*")}
		remote := strings.TrimLeft(fields[0], "*+-#x.o ")
		if match := ipv4Re.FindStringSubmatch(fields[0]); match != nil {
			remote = match[1]
		}
		rec.Remote = remote
		if len(fields) < 10 {
			records = append(records, rec)
			continue
		}
		rec.ReferenceID = entities.String(fields[1])
		if v, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			rec.Stratum = entities.Int(v)
		}
		rec.Type = entities.String(fields[3])
		if fields[4] == "-" {
			rec.When = entities.Int(0)
		} else if v, err := strconv.ParseInt(fields[4], 10, 64); err == nil {
			rec.When = entities.Int(v)
		}
		if v, err := strconv.ParseInt(fields[5], 10, 64); err == nil {
			rec.HostPoll = entities.Int(v)
		}
		if v, err := strconv.ParseInt(fields[6], 10, 64); err == nil {
			rec.Reachability = entities.Int(v)
		}
		if v, err := strconv.ParseFloat(fields[7], 64); err == nil {
			rec.Delay = entities.Float(v)
		}
		if v, err := strconv.ParseFloat(strings.TrimSuffix(fields[8], "."), 64); err == nil {
			rec.Offset = entities.Float(v)
		}
		if v, err := strconv.ParseFloat(fields[9], 64); err == nil {
			rec.Jitter = entities.Float(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// PingCommand renders the ping invocation for a request.
func PingCommand(req entities.PingRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ping %s -t %d -w %d -s %d -c %d",
		req.Destination, req.TTL, req.Timeout*req.Count, req.Size, req.Count)
	if req.VRF != "" {
		return fmt.Sprintf("ip vrf exec %s %s", req.VRF, b.String())
	}
	if req.Source != "" {
		fmt.Fprintf(&b, " -I %s", req.Source)
	} else if req.SourceInterface != "" {
		fmt.Fprintf(&b, " -I %s", req.SourceInterface)
	}
	return b.String()
}

// ParsePing parses iputils ping output into a record.
func ParsePing(output string) entities.PingRecord {
	var rec entities.PingRecord
	if strings.Contains(output, "Unknown host") || strings.Contains(output, "Name or service not known") {
		rec.Error = "unknown host"
		return rec
	}
	if match := txSummryRe.FindStringSubmatch(output); match != nil {
		sent, _ := strconv.ParseInt(match[1], 10, 64)
		received, _ := strconv.ParseInt(match[2], 10, 64)
		rec.Sent = entities.Int(sent)
		rec.Received = entities.Int(received)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0 && i >= len(lines)-2; i-- {
		if match := rttLineRe.FindStringSubmatch(lines[i]); match != nil {
			min, _ := strconv.ParseFloat(match[1], 64)
			avg, _ := strconv.ParseFloat(match[2], 64)
			max, _ := strconv.ParseFloat(match[3], 64)
			stddev, _ := strconv.ParseFloat(match[4], 64)
			rec.RTTMin = entities.Float(min)
			rec.RTTAvg = entities.Float(avg)
			rec.RTTMax = entities.Float(max)
			rec.RTTStddev = entities.Float(stddev)
			break
		}
	}
	for _, line := range lines {
		if match := probeRe.FindStringSubmatch(line); match != nil {
			rtt, _ := strconv.ParseFloat(match[2], 64)
			rec.Probes = append(rec.Probes, entities.PingProbeRecord{
				IPAddress: match[1],
				RTT:       rtt,
			})
		}
	}
	return rec
}

// TrimInterfaceMode normalizes mode strings such as "Access/L2" or
// "Interface/L3" to their bare form.
func TrimInterfaceMode(mode string) string {
	lowered := strings.ToLower(strings.TrimSpace(mode))
	lowered = strings.TrimSuffix(lowered, "/l2")
	lowered = strings.TrimSuffix(lowered, "/l3")
	return lowered
}

// ParseARP parses `arp -n` output. Incomplete entries keep an all-zero MAC
// so the entry still appears in the table.
func ParseARP(output string) []entities.ARPEntryRecord {
	var records []entities.ARPEntryRecord
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		rec := entities.ARPEntryRecord{
			IPAddress: entities.String(fields[0]),
			Age:       entities.Float(0),
		}
		if strings.Contains(fields[1], "incomplete") {
			rec.MACAddress = entities.String("00:00:00:00:00:00")
		} else if len(fields) >= 3 {
			rec.MACAddress = entities.String(strings.ToLower(fields[2]))
		}
		rec.Interface = entities.String(fields[len(fields)-1])
		records = append(records, rec)
	}
	return records
}
