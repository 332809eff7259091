// Package nvue implements the structured-CLI dialect spoken by Cumulus
// Linux 5.x. Every getter prefers `nv show ... -o json` so state arrives as
// JSON instead of free text.
package nvue

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/errs"
	"github.com/napalm-go/cumulus/domain/ports"
	"github.com/napalm-go/cumulus/platform/conv"
	"github.com/napalm-go/cumulus/platform/textparse"
)

const dialectName = "nvue"

const (
	cmdShowSystem       = "nv show system -o json"
	cmdShowPlatform     = "nv show platform -o json"
	cmdShowInterfaces   = "nv show interface -o json"
	cmdShowBGP          = "nv show vrf default router bgp -o json"
	cmdShowBGPNeighbors = "nv show vrf default router bgp neighbor -o json"
	cmdShowLLDP         = "nv show service lldp neighbor -o json"
	cmdShowARP          = "ip -j neigh show"
	cmdShowMACTable     = "nv show bridge domain br_default mac-table -o json"
	cmdShowVLANs        = "nv show bridge domain br_default vlan -o json"
	cmdShowEnvironment  = "nv show platform environment -o json"

	cmdConfigDiff    = "nv config diff --color off"
	cmdConfigApply   = "nv config apply"
	cmdConfigDetach  = "nv config detach"
	cmdConfigHistory = "nv config history"
)

var versionRe = regexp.MustCompile(`Cumulus Linux (5\.\d+(?:\.\d+)?)`)

// Dialect speaks NVUE. The version is fixed at Detect time and selects the
// JSON schema variant used by the parsers.
type Dialect struct {
	version string
	variant schemaVariant
}

// New creates an NVUE dialect with the newest known schema variant.
func New() *Dialect {
	return &Dialect{variant: defaultVariant}
}

// Name returns the canonical dialect identifier.
func (d *Dialect) Name() string { return dialectName }

// Detect probes for NVUE by asking the system view. A switch without the nv
// frontend reports a shell error, which the transport surfaces as
// CommandError; that is a negative probe, not a failure.
func (d *Dialect) Detect(t ports.Transport, cfg entities.DeviceConfig) (bool, error) {
	output, err := t.Execute("nv show system", cfg.CommandTimeout)
	if err != nil {
		var cmdErr *errs.CommandError
		if errors.As(err, &cmdErr) {
			return false, nil
		}
		return false, err
	}
	if !strings.Contains(output, "Cumulus Linux 5") {
		return false, nil
	}
	if match := versionRe.FindStringSubmatch(output); match != nil {
		d.version = match[1]
	}
	d.variant = variantFor(d.version)
	return true, nil
}

// Version returns the Cumulus release detected for this session, empty when
// detection has not run.
func (d *Dialect) Version() string { return d.version }

// executeJSON runs a command expected to return JSON. A garbled first read
// (prompt fragments interleaved with output) is retried once before giving
// up, matching how flaky PTY reads are handled upstream.
func executeJSON(t ports.Transport, cfg entities.DeviceConfig, cmd string) (string, error) {
	output, err := t.Execute(cmd, cfg.CommandTimeout)
	if err != nil {
		return "", err
	}
	if gjson.Valid(strings.TrimSpace(output)) {
		return strings.TrimSpace(output), nil
	}
	output, err = t.Execute(cmd, cfg.CommandTimeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

func (d *Dialect) Facts(t ports.Transport, cfg entities.DeviceConfig) (entities.FactsRecord, error) {
	systemRaw, err := executeJSON(t, cfg, cmdShowSystem)
	if err != nil {
		return entities.FactsRecord{}, err
	}
	rec, err := parseSystem(systemRaw)
	if err != nil {
		return entities.FactsRecord{}, err
	}
	platformRaw, err := executeJSON(t, cfg, cmdShowPlatform)
	if err != nil {
		return entities.FactsRecord{}, err
	}
	if err := parsePlatform(platformRaw, &rec); err != nil {
		return entities.FactsRecord{}, err
	}
	interfaces, err := d.Interfaces(t, cfg)
	if err != nil {
		return entities.FactsRecord{}, err
	}
	for name := range interfaces {
		rec.Interfaces = append(rec.Interfaces, name)
	}
	conv.SortNatural(rec.Interfaces)
	return rec, nil
}

func (d *Dialect) Interfaces(t ports.Transport, cfg entities.DeviceConfig) (map[string]entities.InterfaceRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowInterfaces)
	if err != nil {
		return nil, err
	}
	return parseInterfaces(raw, d.variant)
}

func (d *Dialect) InterfaceMode(t ports.Transport, cfg entities.DeviceConfig, name string) (string, error) {
	raw, err := executeJSON(t, cfg, fmt.Sprintf("nv show interface %s -o json", name))
	if err != nil {
		return "", err
	}
	parsed, err := requireObject("nv show interface", raw)
	if err != nil {
		return "", err
	}
	mode := parsed.Get("mode")
	if !mode.Exists() {
		return "", &errs.UnsupportedFormatError{Command: "nv show interface", Detail: "missing mode field"}
	}
	return textparse.TrimInterfaceMode(mode.String()), nil
}

func (d *Dialect) BGPNeighbors(t ports.Transport, cfg entities.DeviceConfig) ([]entities.BGPNeighborRecord, error) {
	summaryRaw, err := executeJSON(t, cfg, cmdShowBGP)
	if err != nil {
		return nil, err
	}
	neighborRaw, err := executeJSON(t, cfg, cmdShowBGPNeighbors)
	if err != nil {
		return nil, err
	}
	return parseBGP(summaryRaw, neighborRaw)
}

func (d *Dialect) LLDPNeighbors(t ports.Transport, cfg entities.DeviceConfig, iface string, detail bool) ([]entities.LLDPNeighborRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowLLDP)
	if err != nil {
		return nil, err
	}
	records, err := parseLLDP(raw)
	if err != nil {
		return nil, err
	}
	if iface != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.LocalPort == iface {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	if detail {
		// Detail needs the bond or bridge each local port belongs to.
		parents := make(map[string]entities.OptString)
		for i, rec := range records {
			parent, seen := parents[rec.LocalPort]
			if !seen {
				parent = d.parentInterface(t, cfg, rec.LocalPort)
				parents[rec.LocalPort] = parent
			}
			records[i].ParentInterface = parent
		}
	}
	return records, nil
}

func (d *Dialect) parentInterface(t ports.Transport, cfg entities.DeviceConfig, name string) entities.OptString {
	raw, err := executeJSON(t, cfg, fmt.Sprintf("nv show interface %s -o json", name))
	if err != nil {
		return entities.OptString{}
	}
	parsed, err := requireObject("nv show interface", raw)
	if err != nil {
		return entities.OptString{}
	}
	for _, path := range []string{"link.master", "bond.master"} {
		if v := parsed.Get(path); v.Exists() && v.String() != "" {
			return entities.String(v.String())
		}
	}
	if domains := parsed.Get("bridge.domain"); domains.IsObject() {
		parent := ""
		domains.ForEach(func(key, _ gjson.Result) bool {
			parent = key.String()
			return false
		})
		if parent != "" {
			return entities.String(parent)
		}
	}
	return entities.String("")
}

func (d *Dialect) ARPTable(t ports.Transport, cfg entities.DeviceConfig) ([]entities.ARPEntryRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowARP)
	if err != nil {
		return nil, err
	}
	return parseIPNeigh(raw)
}

func (d *Dialect) MACTable(t ports.Transport, cfg entities.DeviceConfig) ([]entities.MACEntryRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowMACTable)
	if err != nil {
		return nil, err
	}
	return parseMACTable(raw, d.variant)
}

func (d *Dialect) VLANs(t ports.Transport, cfg entities.DeviceConfig) ([]entities.VLANRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowVLANs)
	if err != nil {
		return nil, err
	}
	return parseVLANs(raw)
}

func (d *Dialect) Environment(t ports.Transport, cfg entities.DeviceConfig) ([]entities.SensorRecord, error) {
	raw, err := executeJSON(t, cfg, cmdShowEnvironment)
	if err != nil {
		return nil, err
	}
	return parseEnvironment(raw)
}

func (d *Dialect) NTPStats(t ports.Transport, cfg entities.DeviceConfig) ([]entities.NTPPeerRecord, error) {
	output, err := t.Execute(textparse.NTPQCommand, cfg.CommandTimeout)
	if err != nil {
		return nil, err
	}
	return textparse.ParseNTPQ(output)
}

func (d *Dialect) Ping(t ports.Transport, cfg entities.DeviceConfig, req entities.PingRequest) (entities.PingRecord, error) {
	req = req.WithDefaults()
	output, err := t.Execute(textparse.PingCommand(req), cfg.CommandTimeout)
	if err != nil {
		return entities.PingRecord{}, err
	}
	return textparse.ParsePing(output), nil
}

// Stage pushes candidate lines into the NVUE candidate store. A replace
// stages a complete candidate file and swaps it in with nv config replace;
// a merge applies the nv set/unset lines one by one. Neither touches the
// running configuration until Apply.
func (d *Dialect) Stage(t ports.Transport, cfg entities.DeviceConfig, lines []string, replace bool) error {
	if replace {
		heredoc := fmt.Sprintf("cat > /tmp/nvue-candidate.yaml <<'EOF'\n%s\nEOF", strings.Join(lines, "\n"))
		if _, err := t.Execute(heredoc, cfg.CommandTimeout); err != nil {
			return err
		}
		output, err := t.Execute("nv config replace /tmp/nvue-candidate.yaml", cfg.CommandTimeout)
		if err != nil {
			return err
		}
		if containsErrorHint(output) {
			return &errs.CommandError{Command: "nv config replace", Output: strings.TrimSpace(output)}
		}
		return nil
	}
	for _, line := range lines {
		output, err := t.Execute(line, cfg.CommandTimeout)
		if err != nil {
			return err
		}
		if containsErrorHint(output) {
			return &errs.CommandError{Command: line, Output: strings.TrimSpace(output)}
		}
	}
	return nil
}

func (d *Dialect) Diff(t ports.Transport, cfg entities.DeviceConfig) (string, error) {
	output, err := t.Execute(cmdConfigDiff, cfg.CommandTimeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(conv.StripANSI(output)), nil
}

// Apply commits the candidate revision. NVUE apply is transactional: a
// refused or failed apply leaves the running configuration untouched, so the
// returned CommitFailedError is marked atomic. Warning prompts are answered
// y only when force is set; otherwise the apply is declined and the warning
// text is surfaced.
func (d *Dialect) Apply(t ports.Transport, cfg entities.DeviceConfig, force bool) error {
	output, err := t.ExecuteExpect(cmdConfigApply, "[y/N]", cfg.CommandTimeout)
	if err != nil {
		return err
	}
	if strings.Contains(output, "[y/N]") {
		if force {
			confirm, err := t.Execute("y", cfg.CommandTimeout)
			if err != nil {
				return err
			}
			output += confirm
		} else {
			if _, err := t.Execute("n", cfg.CommandTimeout); err != nil {
				return err
			}
			return &errs.CommitFailedError{
				Dialect: dialectName,
				Reason:  applyWarning(output),
				Atomic:  true,
			}
		}
	}
	if containsErrorHint(output) {
		return &errs.CommitFailedError{Dialect: dialectName, Reason: strings.TrimSpace(conv.StripANSI(output)), Atomic: true}
	}
	return nil
}

func (d *Dialect) Abort(t ports.Transport, cfg entities.DeviceConfig) error {
	_, err := t.Execute(cmdConfigDetach, cfg.CommandTimeout)
	return err
}

// Rollback re-applies the revision preceding the current one.
func (d *Dialect) Rollback(t ports.Transport, cfg entities.DeviceConfig) error {
	output, err := t.Execute(cmdConfigHistory, cfg.CommandTimeout)
	if err != nil {
		return err
	}
	revs := parseHistoryRevisions(output)
	if len(revs) < 2 {
		return errs.ErrRollbackUnavailable
	}
	apply, err := t.ExecuteExpect(fmt.Sprintf("nv config apply %s", revs[1]), "[y/N]", cfg.CommandTimeout)
	if err != nil {
		return err
	}
	if strings.Contains(apply, "[y/N]") {
		if _, err := t.Execute("y", cfg.CommandTimeout); err != nil {
			return err
		}
	}
	return nil
}

// SupportsRollback reports that NVUE retains commit checkpoints.
func (d *Dialect) SupportsRollback() bool { return true }

func applyWarning(output string) string {
	cleaned := conv.StripANSI(output)
	if idx := strings.Index(cleaned, "Warning:"); idx >= 0 {
		cleaned = cleaned[idx+len("Warning:"):]
		if end := strings.Index(cleaned, "Are you"); end >= 0 {
			cleaned = cleaned[:end]
		}
		return strings.TrimSpace(cleaned)
	}
	return strings.TrimSpace(cleaned)
}

var errorHints = []string{
	"error:",
	"unable to",
	"invalid config",
	"command not found",
	"failed",
}

func containsErrorHint(output string) bool {
	lowered := strings.ToLower(output)
	for _, hint := range errorHints {
		if strings.Contains(lowered, hint) {
			return true
		}
	}
	return false
}
