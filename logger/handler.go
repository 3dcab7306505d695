package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// TimeLayout is the timestamp layout used for the {time} placeholder.
const TimeLayout = "2006-01-02 15:04:05,000"

// TemplateHandler renders records as single lines from a template with the
// placeholders {time}, {name}, {level} and {message}. Attributes follow the
// rendered template as key=value pairs.
type TemplateHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	name   string
	format string
	level  slog.Leveler
	attrs  []slog.Attr
	group  string
}

// NewTemplateHandler returns a handler writing to w.
func NewTemplateHandler(w io.Writer, name, format string, level slog.Leveler) *TemplateHandler {
	if format == "" {
		format = DefaultFormat
	}
	return &TemplateHandler{mu: &sync.Mutex{}, w: w, name: name, format: format, level: level}
}

func (h *TemplateHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

// levelName renders slog.LevelWarn as WARNING; other levels keep slog's names.
func levelName(l slog.Level) string {
	if l == slog.LevelWarn {
		return "WARNING"
	}
	return l.String()
}

func (h *TemplateHandler) Handle(_ context.Context, r slog.Record) error {
	line := strings.NewReplacer(
		"{time}", r.Time.Format(TimeLayout),
		"{name}", h.name,
		"{level}", levelName(r.Level),
		"{message}", r.Message,
	).Replace(h.format)

	var b strings.Builder
	b.WriteString(line)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *TemplateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *TemplateHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(val)
}
