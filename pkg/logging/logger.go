// Package logging provides structured logging for the watch library
// using zerolog. Observers and publishers log lifecycle transitions at
// debug level through the default logger unless a caller injects one.
//
// Example usage:
//
//	log := logging.Default()
//	log.Debug().Str("watch", "counter").Msg("observer resumed")
//
//	ctx := logging.WithLogger(context.Background(), log)
//	logging.FromContext(ctx).Info().Msg("using logger from context")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is the global logger instance.
var defaultLogger zerolog.Logger

// Nop discards all output.
var Nop = zerolog.Nop()

func init() {
	defaultLogger = newFromEnv()
}

// newFromEnv builds a logger from LOG_LEVEL, LOG_FORMAT and NO_COLOR.
// The default is info-level output to stderr, console-formatted when
// stderr is a terminal and JSON otherwise.
func newFromEnv() zerolog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	var writer io.Writer = os.Stderr
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if format == "" {
		if info, err := os.Stderr.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			format = "console"
		} else {
			format = "json"
		}
	}
	if format == "console" || format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// parseLevel parses a log level string, defaulting to info.
func parseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // Also update zerolog's global logger
}

// New creates a new logger with the given writer.
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// Debug starts a new debug level log event on the default logger.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts a new info level log event on the default logger.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a new warn level log event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts a new error level log event on the default logger.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}
