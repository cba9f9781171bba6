package log

import (
	"context"
	"log/slog"
)

// slogHandler routes records of libraries that log through log/slog, such as
// the embedded broker, into a Logger.
type slogHandler struct {
	l     Logger
	level slog.Leveler
	group string
}

// NewSlogLogger returns a slog logger writing through the global logger under
// the given name. Records below level are dropped.
func NewSlogLogger(name string, level slog.Leveler) *slog.Logger {
	return slog.New(&slogHandler{l: WithName(name), level: level})
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *slogHandler) Handle(_ context.Context, r slog.Record) error {
	kv := make([]any, 0, 2*r.NumAttrs())
	var err error
	r.Attrs(func(a slog.Attr) bool {
		if e, ok := a.Value.Any().(error); ok && a.Key == "error" {
			err = e
			return true
		}
		kv = append(kv, h.key(a.Key), a.Value.Resolve().Any())
		return true
	})

	switch {
	case r.Level >= slog.LevelError:
		h.l.Error(err, r.Message, kv...)
	case r.Level >= slog.LevelWarn:
		h.l.Warn(r.Message, append(kv, errorValue(err)...)...)
	case r.Level >= slog.LevelInfo:
		h.l.Info(r.Message, append(kv, errorValue(err)...)...)
	default:
		h.l.Debug(r.Message, append(kv, errorValue(err)...)...)
	}
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	kv := make([]any, 0, 2*len(attrs))
	for _, a := range attrs {
		kv = append(kv, h.key(a.Key), a.Value.Resolve().Any())
	}
	return &slogHandler{l: h.l.WithValues(kv...), level: h.level, group: h.group}
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogHandler{l: h.l, level: h.level, group: h.key(name)}
}

func (h *slogHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func errorValue(err error) []any {
	if err == nil {
		return nil
	}
	return []any{err}
}
