// Package logging configures the process-wide zerolog logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "CELLCTL_LOG_LEVEL"
	EnvLogNoColor = "CELLCTL_LOG_NOCOLOR"
)

// New returns a console logger at the given level. The CELLCTL_LOG_LEVEL
// and CELLCTL_LOG_NOCOLOR environment variables override the configured
// level and color choice.
func New(level string) zerolog.Logger {
	if env := os.Getenv(EnvLogLevel); env != "" {
		level = env
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    os.Getenv(EnvLogNoColor) != "",
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "cellctl").Logger()
}

// Nop returns a logger that discards everything; used by tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
