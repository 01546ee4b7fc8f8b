// Package ptslog sets up the engine-wide structured logger.
//
// The CLI and the long-running components it drives (the runtime
// manager, the server driver, the session orchestrator) log through a
// single *log.Logger configured here, so verbosity and output format
// are controlled in one place rather than scattered fmt.Printf calls.
package ptslog

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New builds the root logger. The CLI builds its logger here; the
// components derive tagged child loggers from it with For.
func New(out io.Writer, debug bool) *log.Logger {
	if out == nil {
		out = os.Stderr
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})

	if debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	return logger
}

// For returns a child logger tagged with component, e.g. "wineenv" or
// "session". Fields set on the child do not leak back to the parent.
func For(logger *log.Logger, component string) *log.Logger {
	return logger.With("component", component)
}
