package cumulus

import (
	"strings"

	"github.com/napalm-go/cumulus/domain/errs"
)

type candidateState int

const (
	candidateNone candidateState = iota
	candidateStaged
)

// candidate tracks the driver-side view of the device's candidate store.
type candidate struct {
	state candidateState
	lines []string
}

func (c *candidate) reset() {
	c.state = candidateNone
	c.lines = nil
}

func splitConfigLines(config string) []string {
	var lines []string
	for _, line := range strings.Split(config, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// LoadMergeCandidate stages config on top of the running configuration.
// Loading replaces any previously staged candidate.
func (d *Driver) LoadMergeCandidate(config string) error {
	return d.loadCandidate(config, false)
}

// LoadReplaceCandidate stages config as a full replacement of the running
// configuration.
func (d *Driver) LoadReplaceCandidate(config string) error {
	return d.loadCandidate(config, true)
}

func (d *Driver) loadCandidate(config string, replace bool) error {
	t, dialect, err := d.session()
	if err != nil {
		return err
	}
	lines := splitConfigLines(config)
	if len(lines) == 0 {
		return &errs.CommandError{Command: "load candidate", Output: "candidate configuration is empty"}
	}
	if d.candidate.state == candidateStaged {
		// Re-loading starts over from the running config.
		if err := dialect.Abort(t, d.cfg); err != nil {
			d.fatal(err)
			return err
		}
		d.candidate.reset()
	}
	if err := dialect.Stage(t, d.cfg, lines, replace); err != nil {
		d.fatal(err)
		return err
	}
	d.candidate.state = candidateStaged
	d.candidate.lines = lines
	d.logger.Info("candidate staged", "host", d.cfg.Host, "lines", len(lines), "replace", replace)
	return nil
}

// CompareConfig returns the device-rendered diff between the candidate and
// the running configuration. With nothing staged, or a candidate identical
// to the running config, it returns the empty string.
func (d *Driver) CompareConfig() (string, error) {
	t, dialect, err := d.session()
	if err != nil {
		return "", err
	}
	if d.candidate.state != candidateStaged {
		return "", nil
	}
	diff, err := dialect.Diff(t, d.cfg)
	if err != nil {
		d.fatal(err)
		return "", err
	}
	return diff, nil
}

// CommitConfig applies the staged candidate to the running configuration.
// On CommitFailedError the candidate remains staged so the caller can
// inspect, amend or discard it.
func (d *Driver) CommitConfig() error {
	t, dialect, err := d.session()
	if err != nil {
		return err
	}
	if d.candidate.state != candidateStaged {
		return &errs.CommandError{Command: "commit", Output: "no candidate configuration is staged"}
	}
	if err := dialect.Apply(t, d.cfg, d.force); err != nil {
		// A CommitFailedError leaves the candidate staged for inspection.
		d.fatal(err)
		return err
	}
	d.candidate.reset()
	d.logger.Info("candidate committed", "host", d.cfg.Host)
	return nil
}

// DiscardConfig drops the staged candidate. It is idempotent: discarding
// with nothing staged succeeds.
func (d *Driver) DiscardConfig() error {
	t, dialect, err := d.session()
	if err != nil {
		return err
	}
	if d.candidate.state != candidateStaged {
		return nil
	}
	if err := dialect.Abort(t, d.cfg); err != nil {
		d.fatal(err)
		return err
	}
	d.candidate.reset()
	d.logger.Info("candidate discarded", "host", d.cfg.Host)
	return nil
}

// RollbackConfig reverts the running configuration to the previous commit
// checkpoint. Dialects without a commit history return
// errs.ErrRollbackUnavailable.
func (d *Driver) RollbackConfig() error {
	t, dialect, err := d.session()
	if err != nil {
		return err
	}
	if !dialect.SupportsRollback() {
		return errs.ErrRollbackUnavailable
	}
	if err := dialect.Rollback(t, d.cfg); err != nil {
		d.fatal(err)
		return err
	}
	d.logger.Info("running config rolled back", "host", d.cfg.Host)
	return nil
}
