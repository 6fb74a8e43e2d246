// Package logger wraps zerolog with the defaults used by the CRM command line.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Config selects the level, format and destination of log output.
type Config struct {
	Level       string
	Format      string // console or json
	ServiceName string
	Output      io.Writer
}

// Logger embeds zerolog.Logger so callers use the fluent API directly:
//
//	log.Info().Str("email", email).Msg("Login attempt")
type Logger struct {
	zerolog.Logger
}

// New builds a logger. Output defaults to stderr so that command results
// written to stdout are never interleaved with log lines.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: !isTerminal(out)}
	}

	zl := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
	if cfg.ServiceName != "" {
		zl = zl.With().Str("service", cfg.ServiceName).Logger()
	}

	return &Logger{Logger: zl}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{Logger: l.Logger.With().Str(key, value).Logger()}
}

// ParseLevel converts a level name to a zerolog level. Unknown or empty
// names fall back to warn.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
