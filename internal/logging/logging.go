// Package logging builds the process logger and the adapters that route gin
// and gorm output through it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// New returns a zerolog logger writing to stdout. format "json" emits one JSON
// object per line, anything else uses the human readable console writer.
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	out := w
	if !strings.EqualFold(strings.TrimSpace(format), "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	return zerolog.New(out).
		Level(ParseLevel(level, zerolog.InfoLevel)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, falling back to def.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return def
	}
}

// GormWriter satisfies gorm's logger.Writer so SQL traces land in the process log.
type GormWriter struct {
	Log zerolog.Logger
}

// Printf implements logger.Writer. gorm does not pass a level, so it is read
// back from the message: failed queries carry the error as an argument, slow
// queries a "SLOW SQL" note, and plain messages a [warn]/[error] tag.
func (w GormWriter) Printf(format string, args ...interface{}) {
	w.Log.WithLevel(gormMessageLevel(format, args)).
		Str("component", "gorm").
		Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func gormMessageLevel(format string, args []interface{}) zerolog.Level {
	switch {
	case strings.Contains(format, "[error]"):
		return zerolog.ErrorLevel
	case strings.Contains(format, "[warn]"):
		return zerolog.WarnLevel
	}
	level := zerolog.InfoLevel
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			return zerolog.ErrorLevel
		case string:
			if strings.HasPrefix(v, "SLOW SQL") {
				level = zerolog.WarnLevel
			}
		}
	}
	return level
}

// Since is a small helper used by request logging.
func Since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Microsecond)
}
