// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type Options struct {
	Level  string // debug, info, warn or error
	Format string // text or json
	File   string // optional; when set, JSON logs are also appended here
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}

// New builds a logger writing to w. If opts.File is set, records fan out to a
// JSON handler on that file as well. The returned closer closes the file.
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Level != "" {
		var err error
		if level, err = ParseLevel(opts.Level); err != nil {
			return nil, nil, err
		}
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	if opts.Format == "json" {
		console = slog.NewJSONHandler(w, handlerOpts)
	} else {
		console = slog.NewTextHandler(w, handlerOpts)
	}

	if opts.File == "" {
		return slog.New(console), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	var jsonHandler slog.Handler = slog.NewJSONHandler(f, handlerOpts)
	jsonHandler = jsonHandler.WithAttrs([]slog.Attr{slog.String("service", "cultivar")})

	return slog.New(slogmulti.Fanout(jsonHandler, console)), f, nil
}

// Setup installs the logger from New as the slog default.
func Setup(opts Options) (io.Closer, error) {
	logger, closer, err := New(os.Stderr, opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}
