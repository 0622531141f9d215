package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 14
)

type Options struct {
	Env    string
	Level  string
	Format string
	// File enables a rotating JSON log file next to the console output.
	File string
}

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
)

func Init(opts Options) *slog.Logger {
	level := ParseLevel(opts.Level)

	var console slog.Handler
	switch {
	case opts.Env == "production" || opts.Format == "json":
		console = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case opts.Format == "color":
		console = &colorHandler{out: os.Stdout, level: level}
	default:
		console = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	handler := console
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		handler = fanout{console, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})}
	}

	l := slog.New(handler)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LoggerWrapper() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Init(Options{Env: "development"})
	}
	return l
}

// Discard is used by tests and by commands that must keep stdout clean.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// colorHandler prints one coloured line per record for interactive use.
type colorHandler struct {
	out   io.Writer
	level slog.Level
	attrs []slog.Attr
	mu    sync.Mutex
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var paint *color.Color
	switch {
	case r.Level >= slog.LevelError:
		paint = color.New(color.FgRed)
	case r.Level >= slog.LevelWarn:
		paint = color.New(color.FgYellow)
	case r.Level >= slog.LevelInfo:
		paint = color.New(color.FgGreen)
	default:
		paint = color.New(color.FgCyan)
	}

	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s %s %s\n",
		color.New(color.FgBlue).Sprint(r.Time.Format("15:04:05.000")),
		paint.Sprintf("%-5s", r.Level.String()),
		b.String(),
	)
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &colorHandler{out: h.out, level: h.level, attrs: merged}
}

func (h *colorHandler) WithGroup(string) slog.Handler {
	return h
}
