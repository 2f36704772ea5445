// Package obs sets up the process-wide zerolog logger shared by the
// journal core, the admin HTTP surface, and the CLI/load-generator
// entrypoints.
package obs

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger: unix-time timestamps,
// the requested level (falling back to info on a bad value), and a
// console-friendly writer when ENV=dev instead of the default JSON output.
func InitLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("ENV") == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// Logger returns a child logger tagged with the calling component, e.g.
// "journalsrv", "journalctl", or a segment id for per-segment writer logs.
func Logger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

