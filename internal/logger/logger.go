// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is attached to every JSON log line.
const ServiceName = "hr-portal-edge"

// Options configures Init.
type Options struct {
	// Level is a zerolog level name. Unknown or empty levels mean info.
	Level string
	// Pretty switches to human readable console output.
	Pretty bool
	// CacheVersion, when set, is attached to every line so logs from
	// overlapping deployments can be told apart.
	CacheVersion string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Init replaces the global logger and returns it.
func Init(opts Options) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(out).With().Timestamp().Str("service", ServiceName)
	if opts.CacheVersion != "" {
		ctx = ctx.Str("cache_version", opts.CacheVersion)
	}
	log.Logger = ctx.Logger()
	return log.Logger
}

// ParseLevel is zerolog.ParseLevel with an info fallback.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	return log.Logger
}

// WithContext returns the global logger with fields attached.
func WithContext(fields map[string]interface{}) zerolog.Logger {
	return log.Logger.With().Fields(fields).Logger()
}
