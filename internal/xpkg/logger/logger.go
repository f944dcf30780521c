// Package logger configures the process-wide zerolog logger. Every entry
// carries the service name and hostname; individual events add an "action"
// field naming the step they report.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

func New(service string) zerolog.Logger {
	hostname, _ := os.Hostname()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	return zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", service).
		Str("hostname", hostname).
		Logger()
}
