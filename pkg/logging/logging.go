// Package logging builds the slog loggers used by the library and the CLI.
// Every logger created here shares one level, so a verbosity change applies
// process-wide.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var level = func() *slog.LevelVar {
	v := new(slog.LevelVar)
	v.Set(slog.LevelWarn)
	return v
}()

// New creates a logger writing to w in the given format. A nil writer means
// stderr.
func New(w io.Writer, format string) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Noop returns a logger that discards everything.
func Noop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelFor maps a verbosity count to a level: 0 warns, 1 informs and 2 or
// more enables debug output.
func LevelFor(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Level returns the current shared level.
func Level() slog.Level { return level.Level() }

// SetVerbosity sets the shared level and returns a func restoring the
// previous one.
//
//	defer logging.SetVerbosity(slog.LevelDebug)()
func SetVerbosity(l slog.Level) (restore func()) {
	old := level.Level()
	level.Set(l)
	return func() { level.Set(old) }
}
