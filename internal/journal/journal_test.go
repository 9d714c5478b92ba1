package journal

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHandlerPersistsAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_logs.json")
	j := New(path)

	var buf bytes.Buffer
	log := slog.New(NewHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}), j, slog.LevelWarn))

	log.Debug("noise")
	log.Info("meal added", "id", 3)
	log.With("op", "add").Warn("validation failed", "kind", "water", "errors", []string{"bad amount"})
	log.Error("save failed", "err", errors.New("disk full"))

	if !strings.Contains(buf.String(), "meal added") {
		t.Error("expected records to reach the wrapped handler")
	}

	entries, err := New(path).Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 persisted entries, got %d", len(entries))
	}
	if entries[0].Level != "warn" || entries[0].Data["op"] != "add" || entries[0].Data["kind"] != "water" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Level != "error" || entries[1].Data["err"] != "disk full" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestJournalCapsEntries(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "log.json"))
	for i := 0; i < MaxEntries+20; i++ {
		if err := j.Append(Entry{Timestamp: time.Now(), Level: "info", Message: "m"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	entries, _ := j.Entries()
	if len(entries) != MaxEntries {
		t.Errorf("expected %d entries, got %d", MaxEntries, len(entries))
	}
}

func TestClearAndExport(t *testing.T) {
	dir := t.TempDir()
	j := New(filepath.Join(dir, "log.json"))

	path, err := j.Export(dir, time.Now())
	if err != nil || path != "" {
		t.Fatalf("expected nothing to export, got %q err=%v", path, err)
	}

	j.Append(Entry{Timestamp: time.Now(), Level: "error", Message: "boom"})
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	path, err = j.Export(dir, now)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "logs_2024-05-01T09-30-00.000Z.json" {
		t.Errorf("unexpected export name %q", filepath.Base(path))
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "boom") {
		t.Error("expected exported entries")
	}

	if err := j.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ := New(filepath.Join(dir, "log.json")).Entries()
	if len(entries) != 0 {
		t.Errorf("expected cleared journal, got %d", len(entries))
	}
}
