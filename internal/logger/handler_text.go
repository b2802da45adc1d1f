package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

const (
	ansiReset = "\033[0m"
	ansiKey   = "\033[36m"
)

// levelStyle maps a record level to its label and ANSI color.
func levelStyle(l slog.Level) (label, color string) {
	switch {
	case l >= slog.LevelError:
		return "ERROR", "\033[31m"
	case l >= slog.LevelWarn:
		return "WARN", "\033[33m"
	case l >= slog.LevelInfo:
		return "INFO", "\033[32m"
	default:
		return "DEBUG", "\033[90m"
	}
}

// ColorTextHandler renders records as single human-readable lines:
//
//	[2006-01-02 15:04:05] [INFO] message key=value ...
//
// It exists for interactive use; structured consumers get the JSON handler.
// Groups are flattened: the relay only ever attaches flat fields.
type ColorTextHandler struct {
	w        io.Writer
	mu       *sync.Mutex
	opts     *slog.HandlerOptions
	preset   []slog.Attr
	useColor bool
}

// NewColorTextHandler builds a text handler writing to w. useColor enables
// ANSI escapes; it should be false for anything that is not a terminal.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorTextHandler{w: w, mu: &sync.Mutex{}, opts: opts, useColor: useColor}
}

func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

// Handle assembles the whole line first and holds the mutex only for the
// write, so a line is never interleaved with another goroutine's.
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, 128)
	line = append(line, '[')
	line = r.Time.AppendFormat(line, "2006-01-02 15:04:05")
	line = append(line, "] ["...)

	label, color := levelStyle(r.Level)
	if h.useColor {
		line = append(line, color...)
		line = append(line, label...)
		line = append(line, ansiReset...)
	} else {
		line = append(line, label...)
	}
	line = append(line, "] "...)
	line = append(line, r.Message...)

	for _, a := range h.preset {
		line = h.appendAttr(line, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		line = h.appendAttr(line, a)
		return true
	})
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

func (h *ColorTextHandler) appendAttr(line []byte, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return line
	}
	line = append(line, ' ')
	if h.useColor {
		line = append(line, ansiKey...)
		line = append(line, a.Key...)
		line = append(line, ansiReset...)
	} else {
		line = append(line, a.Key...)
	}
	line = append(line, '=')
	return appendValue(line, a.Value.Resolve())
}

// appendValue renders the common field kinds without fmt; anything exotic
// falls back to slog's own String.
func appendValue(line []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		return strconv.AppendInt(line, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(line, v.Uint64(), 10)
	case slog.KindBool:
		return strconv.AppendBool(line, v.Bool())
	case slog.KindTime:
		return v.Time().AppendFormat(line, time.RFC3339)
	default:
		return append(line, v.String()...)
	}
}

// WithAttrs returns a handler whose lines carry the extra fields. The clone
// shares the parent's mutex so writers stay serialized.
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = append(h.preset[:len(h.preset):len(h.preset)], attrs...)
	return &clone
}

// WithGroup is a no-op; text output keeps every field at the top level.
func (h *ColorTextHandler) WithGroup(string) slog.Handler { return h }
