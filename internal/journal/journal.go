// Package journal keeps the most recent log entries in a JSON file so they
// can be shown to the user or attached to a bug report.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/kv"
)

// MaxEntries is how many entries are retained; older ones are dropped.
const MaxEntries = 500

// Entry is one persisted log line.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// Journal is a capped, file-backed list of entries.
type Journal struct {
	path string

	mu      sync.Mutex
	loaded  bool
	entries []Entry
}

func New(path string) *Journal {
	return &Journal{path: path}
}

// Append records e and rewrites the file.
func (j *Journal) Append(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.loadLocked(); err != nil {
		return err
	}
	j.entries = append(j.entries, e)
	if len(j.entries) > MaxEntries {
		j.entries = append([]Entry(nil), j.entries[len(j.entries)-MaxEntries:]...)
	}
	return j.flushLocked()
}

// Entries returns a copy of the retained entries, oldest first.
func (j *Journal) Entries() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.loadLocked(); err != nil {
		return nil, err
	}
	return append([]Entry(nil), j.entries...), nil
}

// Clear drops every entry.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.loaded = true
	j.entries = nil
	return j.flushLocked()
}

// Export writes the entries to dir/logs_<timestamp>.json and returns the file path.
// It returns "" when there is nothing to export.
func (j *Journal) Export(dir string, now time.Time) (string, error) {
	entries, err := j.Entries()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	name := "logs_" + strings.ReplaceAll(now.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-") + ".json"
	path := filepath.Join(dir, name)
	if err := kv.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (j *Journal) loadLocked() error {
	if j.loaded {
		return nil
	}
	data, err := os.ReadFile(j.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read journal: %w", err)
	}
	j.loaded = true
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &j.entries); err != nil {
		// A broken journal is not worth failing over; start fresh.
		j.entries = nil
	}
	return nil
}

func (j *Journal) flushLocked() error {
	entries := j.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return kv.WriteFileAtomic(j.path, data, 0o600)
}

// Handler is a slog.Handler that forwards to next and also appends records
// at or above level to the journal.
type Handler struct {
	next    slog.Handler
	journal *Journal
	level   slog.Leveler
	attrs   []slog.Attr
	group   string
}

func NewHandler(next slog.Handler, j *Journal, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{next: next, journal: j, level: level}
}

func (h *Handler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() || h.next.Enabled(ctx, l)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level.Level() {
		data := map[string]any{}
		for _, a := range h.attrs {
			addAttr(data, h.group, a)
		}
		r.Attrs(func(a slog.Attr) bool {
			addAttr(data, h.group, a)
			return true
		})
		if len(data) == 0 {
			data = nil
		}
		// The journal is best effort; losing an entry must not break the caller.
		_ = h.journal.Append(Entry{
			Timestamp: r.Time.UTC(),
			Level:     levelName(r.Level),
			Message:   r.Message,
			Data:      data,
		})
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	return &c
}

func addAttr(data map[string]any, group string, a slog.Attr) {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			addAttr(data, key, ga)
		}
		return
	}
	if err, ok := v.Any().(error); ok {
		data[key] = err.Error()
		return
	}
	data[key] = v.Any()
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warn"
	case l >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
