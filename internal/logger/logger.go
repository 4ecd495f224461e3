package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the application logger. Development gets human-readable console
// output at debug level; everything else is JSON at info level.
func New(environment string) zerolog.Logger {
	if environment == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}
