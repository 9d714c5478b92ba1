package photo

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveReadDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFileStore(root)

	path, err := s.Save(ctx, []byte("jpeg-bytes"), "meal_1.jpg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if path != "photos/meal_1.jpg" {
		t.Errorf("expected relative path photos/meal_1.jpg, got %q", path)
	}

	enc, err := s.Read(ctx, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(enc)
	if string(raw) != "jpeg-bytes" {
		t.Errorf("expected round trip, got %q", raw)
	}

	if u := s.URL(path); !strings.HasPrefix(u, "file://") || !strings.HasSuffix(u, "/photos/meal_1.jpg") {
		t.Errorf("unexpected url %q", u)
	}

	if err := s.Delete(ctx, path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "photos", "meal_1.jpg")); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}
	if err := s.Delete(ctx, path); err != nil {
		t.Errorf("deleting a missing photo should not fail: %v", err)
	}
}

func TestSaveGeneratesName(t *testing.T) {
	s := NewFileStore(t.TempDir())
	a, err := s.Save(context.Background(), []byte("a"), "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	b, _ := s.Save(context.Background(), []byte("b"), "")
	if a == b {
		t.Error("expected distinct generated names")
	}
	if !strings.HasPrefix(a, "photos/meal_") || !strings.HasSuffix(a, ".jpg") {
		t.Errorf("unexpected generated path %q", a)
	}
}

func TestRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	if _, err := s.Save(ctx, []byte("x"), "../evil.jpg"); err == nil {
		t.Error("expected save with a path to fail")
	}
	for _, p := range []string{"../secret", "photos/../../x", "/etc/passwd", "other/x.jpg", ""} {
		if err := s.Delete(ctx, p); err == nil {
			t.Errorf("expected delete of %q to fail", p)
		}
	}
}

func TestEnsureCreatesDir(t *testing.T) {
	root := t.TempDir()
	if err := NewFileStore(root).Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if info, err := os.Stat(filepath.Join(root, Dir)); err != nil || !info.IsDir() {
		t.Errorf("expected photo dir, err=%v", err)
	}
}
