// Package logging builds the zerolog loggers shared by codemother processes.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the log line encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Options configures a process logger.
type Options struct {
	Service string
	Level   string
	Format  Format
	Writer  io.Writer
}

// New returns a logger tagged with the service name.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(opts.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", raw, err)
		}
		level = parsed
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	switch opts.Format {
	case "", FormatJSON:
	case FormatConsole:
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", opts.Format)
	}

	ctx := zerolog.New(writer).Level(level).With().Timestamp()
	if service := strings.TrimSpace(opts.Service); service != "" {
		ctx = ctx.Str("service", service)
	}
	return ctx.Logger(), nil
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return zerolog.Ctx(ctx)
}
