// Package conv holds the coercions shared by both dialects: counter suffix
// expansion, link-speed normalization, uptime strings and MAC formats vary
// between Cumulus releases, and both parsers funnel through here so the
// normalized model stays identical regardless of dialect.
package conv

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	siSuffixRe = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*([KMGTkmgt])?$`)
	macDotsRe  = regexp.MustCompile(`^[0-9a-f]{4}\.[0-9a-f]{4}\.[0-9a-f]{4}$`)
	macPlainRe = regexp.MustCompile(`^[0-9a-f]{12}$`)
	macColonRe = regexp.MustCompile(`^([0-9a-f]{2}:){5}[0-9a-f]{2}$`)
)

var siMultipliers = map[string]float64{
	"k": 1e3,
	"m": 1e6,
	"g": 1e9,
	"t": 1e12,
}

// ExpandSI expands a counter with an optional SI suffix ("1.2M") into an
// integer. Plain integers pass through unchanged.
func ExpandSI(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty counter")
	}
	if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return v, nil
	}
	match := siSuffixRe.FindStringSubmatch(trimmed)
	if match == nil {
		return 0, fmt.Errorf("unparseable counter %q", s)
	}
	base, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable counter %q: %v", s, err)
	}
	if match[2] != "" {
		base *= siMultipliers[strings.ToLower(match[2])]
	}
	return int64(base), nil
}

// SpeedMbps normalizes a link speed to Mbps. Cumulus reports speeds either
// as strings with a unit suffix ("10G", "1000M", "100") or as a raw bps
// integer in NVUE JSON.
func SpeedMbps(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "N/A") || strings.EqualFold(trimmed, "auto") {
		return 0, false
	}
	unit := float64(1)
	switch {
	case strings.HasSuffix(trimmed, "G") || strings.HasSuffix(trimmed, "g"):
		unit = 1000
		trimmed = trimmed[:len(trimmed)-1]
	case strings.HasSuffix(trimmed, "M") || strings.HasSuffix(trimmed, "m"):
		trimmed = trimmed[:len(trimmed)-1]
	case strings.HasSuffix(trimmed, "K") || strings.HasSuffix(trimmed, "k"):
		unit = 0.001
		trimmed = trimmed[:len(trimmed)-1]
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
	if err != nil {
		return 0, false
	}
	return value * unit, true
}

// BpsToMbps converts a raw bits-per-second figure to Mbps.
func BpsToMbps(bps int64) float64 {
	return float64(bps) / 1e6
}

// UptimeSeconds converts an uptime string to seconds. Accepts the formats
// Cumulus emits: "5 days, 01:22:33", "1 day, 2:03:04", "12:41:27" and plain
// "123456.78" second counters.
func UptimeSeconds(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty uptime")
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v, nil
	}
	var days float64
	rest := trimmed
	if idx := strings.Index(strings.ToLower(trimmed), "day"); idx >= 0 {
		dayPart := strings.TrimSpace(trimmed[:idx])
		d, err := strconv.ParseFloat(dayPart, 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable uptime %q", s)
		}
		days = d
		rest = trimmed[idx:]
		if comma := strings.Index(rest, ","); comma >= 0 {
			rest = rest[comma+1:]
		} else if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			rest = rest[sp+1:]
		} else {
			rest = ""
		}
		rest = strings.TrimSpace(rest)
	}
	var clock float64
	if rest != "" {
		parts := strings.Split(rest, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, fmt.Errorf("unparseable uptime %q", s)
		}
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return 0, fmt.Errorf("unparseable uptime %q", s)
			}
			clock = clock*60 + v
		}
		if len(parts) == 2 {
			clock *= 60
		}
	}
	return days*86400 + clock, nil
}

// NormalizeMAC renders any supported MAC notation as lowercase
// colon-separated hex pairs. Returns false for unrecognized input.
func NormalizeMAC(mac string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(mac))
	switch {
	case macColonRe.MatchString(lowered):
		return lowered, true
	case macDotsRe.MatchString(lowered):
		lowered = strings.ReplaceAll(lowered, ".", "")
	case macPlainRe.MatchString(lowered):
	default:
		return "", false
	}
	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(lowered[i : i+2])
	}
	return b.String(), true
}

// StripANSI removes terminal color escapes from CLI output.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

var chunkRe = regexp.MustCompile(`\d+|\D+`)

// SortNatural sorts interface names so that swp2 precedes swp10.
func SortNatural(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})
}

func naturalLess(a, b string) bool {
	ca := chunkRe.FindAllString(a, -1)
	cb := chunkRe.FindAllString(b, -1)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if ca[i] == cb[i] {
			continue
		}
		na, errA := strconv.Atoi(ca[i])
		nb, errB := strconv.Atoi(cb[i])
		if errA == nil && errB == nil {
			return na < nb
		}
		return ca[i] < cb[i]
	}
	return len(ca) < len(cb)
}
