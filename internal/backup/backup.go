// Package backup writes the whole diary to timestamped JSON artifacts and
// restores from them. It talks to the gateway directly and never touches the
// in-memory snapshot; callers reload it after a restore.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/kv"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/validate"
)

const (
	// Prefix marks every backup artifact name.
	Prefix = "wellbeing_backup_"
	ext    = ".json"

	// stamp is an ISO-8601 UTC timestamp with ':' replaced by '-'.
	stamp = "2006-01-02T15-04-05.000Z"
)

// ErrArtifactNotFound is returned for a backup name with no artifact behind it.
var ErrArtifactNotFound = errors.New("backup not found")

// ArtifactError is a backup that is missing, unreadable or unparsable.
type ArtifactError struct {
	Name string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("backup %s: %v", e.Name, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// Source is the part of the gateway a backup reads and restores.
type Source interface {
	EnsureSchema(ctx context.Context) error
	GetAllMeals(ctx context.Context) ([]model.MealEntry, error)
	GetAllWater(ctx context.Context) ([]model.WaterEntry, error)
	GetAllWeights(ctx context.Context) ([]model.WeightMetric, error)
	GetSettings(ctx context.Context) (model.Settings, bool, error)
	SaveSettings(ctx context.Context, st model.Settings) error
	ReplaceRecords(ctx context.Context, data model.AppData) error
}

// Info describes one artifact.
type Info struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// RestoreOptions selects what a restore writes back. Settings are always
// restored; Records also replaces meals, water and weights.
type RestoreOptions struct {
	Records bool
}

// Engine manages backup artifacts in one directory.
type Engine struct {
	src Source
	dir string
	log *slog.Logger
	now func() time.Time
}

func New(src Source, dir string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{src: src, dir: dir, log: logger, now: time.Now}
}

// Dir returns the artifact directory.
func (e *Engine) Dir() string { return e.dir }

// artifact is the on-disk layout. Settings stays a pointer so a document
// without settings is told apart from one with zero values.
type artifact struct {
	Meals    []model.MealEntry    `json:"meals"`
	Water    []model.WaterEntry   `json:"water"`
	Weights  []model.WeightMetric `json:"weights"`
	Settings *model.Settings      `json:"settings"`
}

// NameFor returns the artifact name for a backup taken at t.
func NameFor(t time.Time) string {
	return Prefix + t.UTC().Format(stamp) + ext
}

// ParseName extracts the timestamp embedded in an artifact name.
func ParseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, Prefix) || !strings.HasSuffix(name, ext) {
		return time.Time{}, false
	}
	t, err := time.Parse(stamp, strings.TrimSuffix(strings.TrimPrefix(name, Prefix), ext))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Create reads everything from the gateway and writes a new artifact. It
// returns the artifact name.
func (e *Engine) Create(ctx context.Context) (string, error) {
	data, err := e.collect(ctx)
	if err != nil {
		e.log.Error("backup failed", "op", "create", "err", err)
		return "", err
	}

	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		e.log.Error("backup failed", "op", "create", "err", err)
		return "", fmt.Errorf("encode backup: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		e.log.Error("backup failed", "op", "create", "dir", e.dir, "err", err)
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := e.freeName()
	if err := kv.WriteFileAtomic(filepath.Join(e.dir, name), append(body, '\n'), 0o644); err != nil {
		e.log.Error("backup failed", "op", "create", "name", name, "err", err)
		return "", err
	}

	e.log.Info("backup created", "name", name,
		"meals", len(data.Meals), "water", len(data.Water), "weights", len(data.Weights))
	return name, nil
}

func (e *Engine) collect(ctx context.Context) (model.AppData, error) {
	if err := e.src.EnsureSchema(ctx); err != nil {
		return model.AppData{}, err
	}
	meals, err := e.src.GetAllMeals(ctx)
	if err != nil {
		return model.AppData{}, err
	}
	water, err := e.src.GetAllWater(ctx)
	if err != nil {
		return model.AppData{}, err
	}
	weights, err := e.src.GetAllWeights(ctx)
	if err != nil {
		return model.AppData{}, err
	}
	settings, ok, err := e.src.GetSettings(ctx)
	if err != nil {
		return model.AppData{}, err
	}
	if !ok {
		settings = model.DefaultSettings()
	}
	return model.AppData{Meals: meals, Water: water, Weights: weights, Settings: settings}.Clone(), nil
}

// freeName picks a name that no existing artifact uses, moving the
// timestamp forward a millisecond at a time.
func (e *Engine) freeName() string {
	t := e.now()
	for {
		name := NameFor(t)
		if _, err := os.Stat(filepath.Join(e.dir, name)); errors.Is(err, os.ErrNotExist) {
			return name
		}
		t = t.Add(time.Millisecond)
	}
}

// List returns every artifact, newest first. A missing directory is an
// empty list.
func (e *Engine) List(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(e.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		e.log.Error("backup list failed", "op", "list", "dir", e.dir, "err", err)
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	out := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		t, ok := ParseName(entry.Name())
		if !ok {
			continue
		}
		out = append(out, Info{Name: entry.Name(), Date: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Name > out[j].Name
	})
	return out, nil
}

// Load parses the named artifact.
func (e *Engine) Load(ctx context.Context, name string) (model.AppData, error) {
	a, err := e.load(ctx, name)
	if err != nil {
		return model.AppData{}, err
	}
	data := model.AppData{Meals: a.Meals, Water: a.Water, Weights: a.Weights, Settings: model.DefaultSettings()}
	if a.Settings != nil {
		data.Settings = *a.Settings
	}
	return data.Clone(), nil
}

func (e *Engine) load(ctx context.Context, name string) (*artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := e.path(name)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &ArtifactError{Name: name, Err: ErrArtifactNotFound}
	}
	if err != nil {
		return nil, &ArtifactError{Name: name, Err: err}
	}
	var a artifact
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, &ArtifactError{Name: name, Err: fmt.Errorf("parse: %w", err)}
	}
	return &a, nil
}

// Restore writes the artifact's settings back through the gateway and, with
// opts.Records, replaces every meal, water and weight row. The live snapshot
// is not touched.
func (e *Engine) Restore(ctx context.Context, name string, opts RestoreOptions) error {
	err := e.restore(ctx, name, opts)
	if err != nil {
		e.log.Error("restore failed", "op", "restore", "name", name, "err", err)
		return err
	}
	e.log.Info("backup restored", "name", name, "records", opts.Records)
	return nil
}

func (e *Engine) restore(ctx context.Context, name string, opts RestoreOptions) error {
	a, err := e.load(ctx, name)
	if err != nil {
		return err
	}
	if a.Settings != nil {
		if err := validate.Settings(*a.Settings); err != nil {
			return &ArtifactError{Name: name, Err: err}
		}
	}

	if err := e.src.EnsureSchema(ctx); err != nil {
		return err
	}
	if a.Settings != nil {
		if err := e.src.SaveSettings(ctx, *a.Settings); err != nil {
			return err
		}
	}
	if opts.Records {
		data := model.AppData{Meals: a.Meals, Water: a.Water, Weights: a.Weights}
		if err := e.src.ReplaceRecords(ctx, data); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the named artifact. A missing artifact is reported as
// ErrArtifactNotFound.
func (e *Engine) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := e.path(name)
	if err != nil {
		e.log.Error("backup delete failed", "op", "delete", "name", name, "err", err)
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = &ArtifactError{Name: name, Err: ErrArtifactNotFound}
		} else {
			err = &ArtifactError{Name: name, Err: err}
		}
		e.log.Error("backup delete failed", "op", "delete", "name", name, "err", err)
		return err
	}
	e.log.Info("backup deleted", "name", name)
	return nil
}

// path maps a bare artifact name into the backup directory.
func (e *Engine) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", &ArtifactError{Name: name, Err: errors.New("invalid backup name")}
	}
	return filepath.Join(e.dir, name), nil
}
