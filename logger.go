package cumulus

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/napalm-go/cumulus/domain/ports"
)

// Log levels accepted by NewLogger.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

// secretKeys are structured-log keys whose values are never written out.
var secretKeys = map[string]bool{
	"password":      true,
	"sudo_password": true,
	"community":     true,
}

// secretTextRe matches credential echoes inside free-form command output.
var secretTextRe = regexp.MustCompile(`(?i)(password[:=]?\s*)\S+`)

// secretJSONPaths are document paths scrubbed from JSON payloads before
// logging.
var secretJSONPaths = []string{"password", "system.password", "community"}

// StdLogger writes structured key/value lines through the standard log
// package, redacting credentials. It satisfies the logging port used by the
// transport and dialect layers.
type StdLogger struct {
	level int
	l     *log.Logger
}

// NewLogger returns a logger writing to w at the given level.
func NewLogger(w io.Writer, level int) *StdLogger {
	return &StdLogger{level: level, l: log.New(w, "", log.LstdFlags)}
}

func (s *StdLogger) Debug(msg string, kv ...any) { s.write(LevelDebug, "DEBUG", msg, kv) }
func (s *StdLogger) Info(msg string, kv ...any)  { s.write(LevelInfo, "INFO", msg, kv) }
func (s *StdLogger) Warn(msg string, kv ...any)  { s.write(LevelWarn, "WARN", msg, kv) }
func (s *StdLogger) Error(msg string, kv ...any) { s.write(LevelError, "ERROR", msg, kv) }

func (s *StdLogger) write(level int, tag, msg string, kv []any) {
	if level < s.level {
		return
	}
	var b strings.Builder
	b.WriteString(tag)
	b.WriteString(" ")
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		value := "?"
		if i+1 < len(kv) {
			value = fmt.Sprint(kv[i+1])
		}
		if secretKeys[strings.ToLower(key)] {
			value = "[redacted]"
		} else {
			value = Redact(value)
		}
		fmt.Fprintf(&b, " %s=%q", key, value)
	}
	s.l.Println(b.String())
}

// Redact scrubs credentials from a payload before it is logged. JSON payloads
// have their secret paths overwritten in place; plain text is pattern-scrubbed.
func Redact(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "{") && gjson.Valid(trimmed) {
		for _, path := range secretJSONPaths {
			if gjson.Get(trimmed, path).Exists() {
				if scrubbed, err := sjson.Set(trimmed, path, "[redacted]"); err == nil {
					trimmed = scrubbed
				}
			}
		}
		return trimmed
	}
	return secretTextRe.ReplaceAllString(payload, "${1}[redacted]")
}

var _ ports.Logger = (*StdLogger)(nil)
