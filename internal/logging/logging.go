// Package logging builds the zerolog loggers shared by the CLI and the server.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w. Debug enables debug level,
// otherwise only warnings and above reach the terminal so CLI output stays clean.
func New(debug bool, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// NewServer returns an info-level logger for long-running server processes
func NewServer(debug bool, w io.Writer) zerolog.Logger {
	l := New(debug, w)
	if !debug {
		l = l.Level(zerolog.InfoLevel)
	}
	return l
}
