// Package logger builds prefixed charmbracelet/log loggers for the server, build and http components.
//
// Everything logs to stderr: in IPC mode stdout carries msgpack frames only.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Output is where component loggers write. Tests may swap it.
var Output io.Writer = os.Stderr

// New creates a component logger that follows the global log level.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(Output, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(Output, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Setup points the package level charm logger at Output and sets its level.
func Setup(debug bool) {
	log.SetOutput(Output)
	log.SetReportTimestamp(true)
	if debug {
		log.SetLevel(log.DebugLevel)
		return
	}
	log.SetLevel(log.InfoLevel)
}
