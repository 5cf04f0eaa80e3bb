// Package agentlogger provides the structured logger used across the core.
//
// It wraps log/slog with a filtering handler: at DEBUG every record is
// surfaced; above DEBUG, third-party/library records below WARN are
// dropped, keeping INFO output focused on this module's own events — the
// same trick the teacher repo uses to keep its CLI output readable when
// vendored SDKs log verbosely.
package agentlogger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

const modulePackagePrefix = "github.com/relaycortex/agentcore"

// ParseLevel converts a string log level to slog.Level. Unknown values fall
// back to Warn rather than erroring, since misconfigured log levels should
// never prevent a process from starting.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type filteringHandler struct {
	handler  slog.Handler
	minLevel slog.Level
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.minLevel <= slog.LevelDebug {
		return h.handler.Handle(ctx, record)
	}
	if h.isModulePackage(record.PC) {
		return h.handler.Handle(ctx, record)
	}
	// Third-party caller at non-debug level: drop unless it's a warning or
	// above, which usually indicates something worth the operator's time.
	if record.Level >= slog.LevelWarn {
		return h.handler.Handle(ctx, record)
	}
	return nil
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filteringHandler{handler: h.handler.WithAttrs(attrs), minLevel: h.minLevel}
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{handler: h.handler.WithGroup(name), minLevel: h.minLevel}
}

func (h *filteringHandler) isModulePackage(pc uintptr) bool {
	if pc == 0 {
		return true
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	return strings.HasPrefix(frame.Function, modulePackagePrefix)
}

// Options configures New.
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// New builds a slog.Logger with the filtering handler installed.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(opts.Level)

	handlerOpts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if opts.JSON {
		base = slog.NewJSONHandler(out, handlerOpts)
	} else {
		base = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(&filteringHandler{handler: base, minLevel: level})
}

// Default returns a logger at Warn level writing text to stderr, suitable
// as a zero-value fallback for collaborators constructed without an
// explicit logger.
func Default() *slog.Logger {
	return New(Options{Level: "warn"})
}
