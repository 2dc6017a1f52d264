// Package testlog captures log output in tests. The recorder is a slog
// handler behind logx.FromSlog, so tests exercise the production adapter.
package testlog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"dorm-delivery/internal/logx"
)

// Entry is one recorded line. Level is lower case: debug, info, warn or error.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Recorder keeps every entry logged through its Logger.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Recorder { return &Recorder{} }

// Logger returns a debug-level logger that writes into r.
func (r *Recorder) Logger() logx.Logger {
	return logx.FromSlog(slog.New(handler{r: r}))
}

// Entries returns a copy of what has been logged so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the messages logged at level, in order.
func (r *Recorder) Messages(level string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}

// Field returns the value of key on the first entry with msg.
func (r *Recorder) Field(msg, key string) (any, bool) {
	for _, e := range r.Entries() {
		if e.Msg != msg {
			continue
		}
		for _, f := range e.Fields {
			if f.Key == key {
				return f.Value, true
			}
		}
	}
	return nil, false
}

type handler struct {
	r     *Recorder
	attrs []slog.Attr
}

func (handler) Enabled(context.Context, slog.Level) bool { return true }

func (h handler) Handle(_ context.Context, rec slog.Record) error {
	fields := make([]logx.Field, 0, len(h.attrs)+rec.NumAttrs())
	for _, a := range h.attrs {
		fields = append(fields, logx.Field{Key: a.Key, Value: a.Value.Any()})
	}
	rec.Attrs(func(a slog.Attr) bool {
		fields = append(fields, logx.Field{Key: a.Key, Value: a.Value.Any()})
		return true
	})

	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	h.r.entries = append(h.r.entries, Entry{
		Level:  strings.ToLower(rec.Level.String()),
		Msg:    rec.Message,
		Fields: fields,
	})
	return nil
}

func (h handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handler{r: h.r, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

// Groups are not used by logx.
func (h handler) WithGroup(string) slog.Handler { return h }
