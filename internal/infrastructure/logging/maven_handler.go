package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ComponentKey is the attribute the Maven handler lifts into the bracketed prefix.
const ComponentKey = "component"

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// MavenOptions configures a MavenHandler.
type MavenOptions struct {
	Level slog.Leveler

	// HideTime drops the [HH:MM:SS] block. Used by tests.
	HideTime bool

	// Color forces colors on or off. Nil means detect a terminal.
	Color *bool
}

// MavenHandler is a slog.Handler that formats logs in Maven-style:
// [LEVEL] [component] [HH:MM:SS] message key=value key=value
type MavenHandler struct {
	w         io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	hideTime  bool
	useColors bool
	component string
	prefix    string // dotted group path for attrs added after WithGroup
	preformat string // attrs from WithAttrs, already rendered
}

// NewMavenHandler creates a new Maven-style handler
func NewMavenHandler(w io.Writer, opts *MavenOptions) *MavenHandler {
	h := &MavenHandler{
		w:         w,
		mu:        &sync.Mutex{},
		level:     slog.LevelInfo,
		useColors: isTerminal(w),
	}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.hideTime = opts.HideTime
		if opts.Color != nil {
			h.useColors = *opts.Color
		}
	}
	return h
}

// isTerminal checks if the writer is a terminal (for color output)
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Enabled reports whether the handler handles records at the given level.
func (h *MavenHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes a log record
func (h *MavenHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	h.colored(&buf, levelColor(r.Level), "["+levelString(r.Level)+"]")

	if h.component != "" {
		buf.WriteString(" [")
		buf.WriteString(h.component)
		buf.WriteString("]")
	}

	if !h.hideTime && !r.Time.IsZero() {
		buf.WriteString(" ")
		h.colored(&buf, colorGray, "["+r.Time.Format("15:04:05")+"]")
	}

	buf.WriteString(" ")
	buf.WriteString(r.Message)
	buf.WriteString(h.preformat)

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == ComponentKey && h.prefix == "" {
			return true
		}
		appendAttr(&buf, h.prefix, a)
		return true
	})

	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *MavenHandler) colored(buf *strings.Builder, color, s string) {
	if !h.useColors {
		buf.WriteString(s)
		return
	}
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(colorReset)
}

// appendAttr renders a key=value pair, flattening groups into dotted keys.
func appendAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key == "" {
			key = prefix
		}
		for _, ga := range group {
			appendAttr(buf, key, ga)
		}
		return
	}

	buf.WriteString(" ")
	buf.WriteString(key)
	buf.WriteString("=")
	buf.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		s = v.Time().Format("15:04:05")
	default:
		s = fmt.Sprint(v.Any())
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// WithAttrs returns a new handler with the given attributes added
func (h *MavenHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	var buf strings.Builder
	buf.WriteString(h.preformat)
	for _, a := range attrs {
		if a.Key == ComponentKey && h.prefix == "" {
			h2.component = a.Value.String()
			continue
		}
		appendAttr(&buf, h.prefix, a)
	}
	h2.preformat = buf.String()
	return &h2
}

// WithGroup returns a new handler with the given group name added
func (h *MavenHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h.prefix == "" {
		h2.prefix = name
	} else {
		h2.prefix = h.prefix + "." + name
	}
	return &h2
}

// levelColor returns the ANSI color code for a log level (Maven-style)
func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorCyan
	default:
		return colorGray
	}
}

// levelString returns a short, uppercase string for the log level
func levelString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return level.String()
	}
}
