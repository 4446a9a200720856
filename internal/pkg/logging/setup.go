package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/avdeev/matchpulse/internal/pkg/config"
)

// Setup builds the root logger for a service: a stdout text handler plus an
// optional file handler when logging.file_name is configured. Components get
// their loggers by injection from this root; only main sets slog.SetDefault.
func Setup(cfg *config.LoggingConfig, serviceName string) (*slog.Logger, error) {
	level := parseLevel(cfg.Level)

	var handlers []slog.Handler
	handlers = append(handlers, slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	if cfg.FileName != "" {
		fileHandler, err := newFileHandler(cfg.Dir, cfg.FileName, level)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		handlers = append(handlers, fileHandler)
	}

	logger := slog.New(&MultiHandler{handlers: handlers})
	logger = logger.With("service", serviceName)
	return logger, nil
}

// NewSinkLogger returns a logger writing both to stdout and to
// <dir>/<name>.log. Used for the dedicated per-alert sinks and the summary
// sink so each stream stays greppable in its own file.
func NewSinkLogger(dir, name string, level string) (*slog.Logger, error) {
	lvl := parseLevel(level)

	fileHandler, err := newFileHandler(dir, name+".log", lvl)
	if err != nil {
		return nil, fmt.Errorf("failed to open log sink %s: %w", name, err)
	}

	stdout := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(&MultiHandler{handlers: []slog.Handler{stdout, fileHandler}}), nil
}

// NewAlertLogger returns the dedicated sink for one alert evaluator.
func NewAlertLogger(dir, name string, level string) (*slog.Logger, error) {
	logger, err := NewSinkLogger(dir, name, level)
	if err != nil {
		return nil, err
	}
	return logger.With("alert", name), nil
}

func newFileHandler(dir, name string, level slog.Level) (slog.Handler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans records out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var lastErr error
	for _, h := range m.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: handlers}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: handlers}
}
