package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
)

const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	White  = "\033[37m"
	BgRed  = "\033[41m"
	Dim    = "\033[2m"
)

// Options configures the console handler.
type Options struct {
	Output       io.Writer
	TimeFormat   string
	Level        slog.Level
	AddSource    bool
	EnableColors bool
}

func DefaultOptions() *Options {
	return &Options{
		Output:       os.Stdout,
		TimeFormat:   "15:04:05",
		Level:        slog.LevelInfo,
		EnableColors: true,
	}
}

// handler is a minimal slog.Handler that renders human-oriented,
// optionally colorized lines. Attribute groups are flattened.
type handler struct {
	opts  *Options
	attrs []slog.Attr
	mu    *sync.Mutex
}

func newHandler(opts *Options) *handler {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &handler{opts: opts, mu: &sync.Mutex{}}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := &handler{opts: h.opts, mu: h.mu}
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return h2
}

func (h *handler) WithGroup(string) slog.Handler {
	return h
}

func (h *handler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder

	if h.opts.EnableColors {
		b.WriteString(Dim)
	}
	b.WriteString(record.Time.Format(h.opts.TimeFormat))
	if h.opts.EnableColors {
		b.WriteString(Reset)
	}
	b.WriteString(" ")

	if record.Level != slog.LevelInfo {
		badge := strings.ToUpper(record.Level.String())
		if h.opts.EnableColors {
			b.WriteString(levelColor(record.Level) + Bold)
		}
		b.WriteString(badge)
		if h.opts.EnableColors {
			b.WriteString(Reset)
		}
		b.WriteString(" ")
	}

	if h.opts.AddSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		file := frame.File
		if i := strings.LastIndex(file, "/"); i >= 0 {
			file = file[i+1:]
		}
		b.WriteString(fmt.Sprintf("%s:%d ", file, frame.Line))
	}

	b.WriteString(record.Message)

	appendAttr := func(a slog.Attr) bool {
		b.WriteString(fmt.Sprintf(" %s=%v", a.Key, a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	record.Attrs(appendAttr)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.opts.Output, b.String())
	return err
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return Red
	case level >= slog.LevelWarn:
		return Yellow
	case level >= slog.LevelInfo:
		return Green
	default:
		return Cyan
	}
}

// NewLogger returns a slog.Logger backed by the console handler.
func NewLogger(opts *Options) *slog.Logger {
	return slog.New(newHandler(opts))
}
