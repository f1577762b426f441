// Package colorlog returns labelled slog loggers. Lines are colored by
// level when the output is a terminal.
package colorlog

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
)

const (
	reset   = "\033[0m"
	gray    = "\033[90m"
	cyan    = "\033[36m"
	yellow  = "\033[33m"
	red     = "\033[31m"
	timeFmt = "15:04:05.000"
)

var (
	defaultLevel = new(slog.LevelVar)
	defaultColor atomic.Pointer[bool]
)

// SetLevel changes the level of every logger that does not set its own.
func SetLevel(l slog.Level) {
	defaultLevel.Set(l)
}

// SetColor forces color on or off for every logger that does not set its
// own. Nil goes back to terminal detection.
func SetColor(on *bool) {
	defaultColor.Store(on)
}

type Options struct {
	// Defaults to os.Stderr.
	Writer io.Writer
	// Defaults to the package level set with SetLevel.
	Level slog.Leveler
	// Forces color on or off. Nil means detect.
	Color *bool
}

func New(label string) *slog.Logger {
	return NewWithOptions(label, Options{})
}

func NewWithOptions(label string, opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := opts.Level
	if level == nil {
		level = defaultLevel
	}
	h := &handler{buf: new(bytes.Buffer), mu: new(sync.Mutex), w: w, color: opts.Color, tty: isTerminal(w)}
	prefix := "[" + label + "] "
	h.inner = slog.NewTextHandler(h.buf, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String(slog.TimeKey, a.Value.Time().Format(timeFmt))
			case slog.MessageKey:
				return slog.String(slog.MessageKey, prefix+a.Value.String())
			}
			return a
		},
	})
	return slog.New(h)
}

// handler renders through a text handler into a scratch buffer, then
// copies the line to w wrapped in the level's color.
type handler struct {
	inner slog.Handler
	buf   *bytes.Buffer
	mu    *sync.Mutex
	w     io.Writer
	color *bool
	tty   bool
}

func (h *handler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.inner.Enabled(ctx, l)
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	line := h.buf.Bytes()
	if h.useColor() {
		line = paint(r.Level, line)
	}
	_, err := h.w.Write(line)
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	return &c
}

func (h *handler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	return &c
}

func (h *handler) useColor() bool {
	if h.color != nil {
		return *h.color
	}
	if on := defaultColor.Load(); on != nil {
		return *on
	}
	return h.tty
}

func paint(l slog.Level, line []byte) []byte {
	var c string
	switch {
	case l >= slog.LevelError:
		c = red
	case l >= slog.LevelWarn:
		c = yellow
	case l >= slog.LevelInfo:
		c = cyan
	default:
		c = gray
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	out := make([]byte, 0, len(c)+len(line)+len(reset)+1)
	out = append(out, c...)
	out = append(out, line...)
	out = append(out, reset...)
	return append(out, '\n')
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
