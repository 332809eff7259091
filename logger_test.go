package cumulus

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerRedactsSecretKeys(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelDebug)
	l.Info("connecting", "host", "leaf01", "password", "hunter2")
	out := buf.String()
	assert.Contains(t, out, "host=\"leaf01\"")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "[redacted]")
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelWarn)
	l.Debug("noise")
	l.Info("still noise")
	l.Error("signal")
	out := buf.String()
	assert.NotContains(t, out, "noise")
	assert.Contains(t, out, "signal")
}

func TestLoggerOddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelDebug)
	l.Info("msg", "dangling")
	assert.Contains(t, buf.String(), "dangling=\"?\"")
}

func TestRedactJSON(t *testing.T) {
	in := `{"host": "leaf01", "password": "hunter2"}`
	out := Redact(in)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "leaf01")
}

func TestRedactText(t *testing.T) {
	out := Redact("login with password: hunter2 now")
	assert.False(t, strings.Contains(out, "hunter2"), "got %q", out)
}

func TestRedactPassThrough(t *testing.T) {
	in := "ordinary command output"
	assert.Equal(t, in, Redact(in))
}
