// Package photo stores meal photos as files under a data directory.
//
// Meals only keep the relative path returned by Save ("photos/<name>").
package photo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Dir is the folder, relative to the data root, that holds photos.
const Dir = "photos"

// Store is the contract the diary core needs from photo storage.
type Store interface {
	Ensure(ctx context.Context) error
	Save(ctx context.Context, data []byte, name string) (string, error)
	Read(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// FileStore implements Store on the local filesystem.
type FileStore struct {
	root string

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewFileStore returns a store rooted at root; photos land in root/photos.
func NewFileStore(root string) *FileStore {
	return &FileStore{
		root:    filepath.Clean(root),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewName returns a unique, time-sortable file name such as meal_01HX....jpg.
func (s *FileStore) NewName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return "meal_" + ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String() + ".jpg"
}

// Ensure creates the photo directory.
func (s *FileStore) Ensure(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(s.root, Dir), 0o755); err != nil {
		return fmt.Errorf("create photo dir: %w", err)
	}
	return nil
}

// Save writes data as photos/name and returns that relative path.
func (s *FileStore) Save(ctx context.Context, data []byte, name string) (string, error) {
	if err := s.Ensure(ctx); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.NewName()
	}
	if filepath.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("invalid photo name %q", name)
	}
	rel := Dir + "/" + name
	if err := os.WriteFile(filepath.Join(s.root, Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write photo %s: %w", rel, err)
	}
	return rel, nil
}

// Read returns the photo bytes base64 encoded.
func (s *FileStore) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read photo %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Delete removes the photo. A photo that is already gone is not an error.
func (s *FileStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete photo %s: %w", path, err)
	}
	return nil
}

// URL returns a file:// URI a viewer can display.
func (s *FileStore) URL(path string) string {
	abs, err := s.resolve(path)
	if err != nil {
		return ""
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// resolve maps a stored relative path to a file inside the photo directory.
func (s *FileStore) resolve(path string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimSpace(path)))
	if rel == "." || filepath.IsAbs(rel) || filepath.Dir(rel) != Dir {
		return "", fmt.Errorf("invalid photo path %q", path)
	}
	return filepath.Join(s.root, rel), nil
}
