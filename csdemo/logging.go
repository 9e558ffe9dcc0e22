package csdemo

import (
	"io"

	"github.com/rs/zerolog"
)

// logger is the package-level diagnostic logger. It defaults to a no-op
// logger so that parsing stays silent unless a caller opts in.
var logger zerolog.Logger = zerolog.Nop()

// SetLogger installs a zerolog.Logger used for debug diagnostics. Its one
// caller is the collector: when DebugNulls is enabled it logs a structured
// event per null output cell (tick, entity id, prop id and name); the event
// carries no NullReason. Field-path/protocol recoveries and per-entity
// decode failures are not logged.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// Log exposes the package logger to the sibling collect/demo packages so
// their diagnostics share one sink with this package's.
func Log() *zerolog.Logger {
	return &logger
}

// NewWriterLogger is a small convenience constructor for callers that just
// want readable output on a writer (e.g. os.Stderr) without assembling a
// zerolog.Logger themselves.
func NewWriterLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
