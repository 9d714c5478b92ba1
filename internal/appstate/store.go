// Package appstate owns the in-memory diary snapshot.
//
// A Store is built once by the application root and handed to every UI
// layer. All mutations go through its actions, which validate, persist via
// the gateway, patch the snapshot and then notify subscribers.
package appstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/kv"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/photo"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/validate"
)

// SettingsCache is the secondary durable copy of settings used for recovery.
type SettingsCache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// Listener receives a private copy of the snapshot after every change.
type Listener func(model.AppData)

// InitError reports a failed startup. Recovered is true when settings were
// restored from the fallback cache.
type InitError struct {
	Step      string
	Err       error
	Recovered bool
}

func (e *InitError) Error() string {
	if e.Recovered {
		return fmt.Sprintf("initialize (%s): %v (settings recovered from cache)", e.Step, e.Err)
	}
	return fmt.Sprintf("initialize (%s): %v", e.Step, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Options wires a Store to its collaborators. Gateway and Photos are required.
type Options struct {
	Gateway  store.Gateway
	Photos   photo.Store
	Fallback SettingsCache
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// Store is the single writer of the diary snapshot.
type Store struct {
	gw       store.Gateway
	photos   photo.Store
	fallback SettingsCache
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time

	initMu      sync.Mutex
	initialized bool
	recovered   bool

	// one lock per record kind serializes validate -> persist -> patch
	mealMu     sync.Mutex
	waterMu    sync.Mutex
	weightMu   sync.Mutex
	settingsMu sync.Mutex

	mu   sync.RWMutex
	data model.AppData

	subMu   sync.Mutex
	nextSub int
	subs    []subscription
}

type subscription struct {
	id int
	fn Listener
}

func New(opts Options) *Store {
	s := &Store{
		gw:       opts.Gateway,
		photos:   opts.Photos,
		fallback: opts.Fallback,
		notifier: opts.Notifier,
		log:      opts.Logger,
		now:      opts.Now,
		data: model.AppData{
			Meals:    []model.MealEntry{},
			Water:    []model.WaterEntry{},
			Weights:  []model.WeightMetric{},
			Settings: model.DefaultSettings(),
		},
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() model.AppData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Settings returns the current settings.
func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings.Clone()
}

// Initialized reports whether InitializeAppState has completed.
func (s *Store) Initialized() bool {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	return s.initialized
}

// Recovered reports whether the snapshot came from the fallback cache
// instead of the database.
func (s *Store) Recovered() bool {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	return s.recovered
}

// Subscribe registers fn to run after every successful state change and
// returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) emit() {
	s.subMu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.subMu.Unlock()
	if len(subs) == 0 {
		return
	}

	snap := s.Snapshot()
	for _, sub := range subs {
		sub.fn(snap.Clone())
	}
}

// InitializeAppState loads the database into the snapshot. Only the first
// successful call does any work.
func (s *Store) InitializeAppState(ctx context.Context) error {
	s.initMu.Lock()
	if s.initialized {
		s.initMu.Unlock()
		return nil
	}

	data, step, err := s.load(ctx, true)
	if err != nil {
		initErr := s.recoverLocked(ctx, step, err)
		recovered := s.recovered
		s.initMu.Unlock()
		if recovered {
			s.emit()
		}
		return initErr
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	s.initialized = true
	s.initMu.Unlock()

	s.log.Info("app state initialized",
		"meals", len(data.Meals), "water", len(data.Water), "weights", len(data.Weights))
	s.emit()
	return nil
}

// Reload re-reads every record kind from the gateway, for example after a
// backup was restored. Settings keep their current value if none are saved.
func (s *Store) Reload(ctx context.Context) error {
	s.mealMu.Lock()
	s.waterMu.Lock()
	s.weightMu.Lock()
	s.settingsMu.Lock()

	data, step, err := s.load(ctx, false)
	if err == nil {
		s.mu.Lock()
		s.data = data
		s.mu.Unlock()
	}

	s.settingsMu.Unlock()
	s.weightMu.Unlock()
	s.waterMu.Unlock()
	s.mealMu.Unlock()

	if err != nil {
		s.log.Error("reload failed", "step", step, "err", err)
		s.notifier.Notify(Notice{Level: NoticeError, Message: "Could not reload diary data"})
		return fmt.Errorf("reload (%s): %w", step, err)
	}

	s.initMu.Lock()
	s.initialized = true
	s.recovered = false
	s.initMu.Unlock()

	s.emit()
	return nil
}

// load reads all kinds. With startup set it also prepares the schema and
// photo directory and persists default settings when none exist.
func (s *Store) load(ctx context.Context, startup bool) (model.AppData, string, error) {
	if startup {
		if err := s.gw.EnsureSchema(ctx); err != nil {
			return model.AppData{}, "schema", err
		}
		if err := s.photos.Ensure(ctx); err != nil {
			return model.AppData{}, "photo directory", err
		}
	}

	meals, err := s.gw.GetAllMeals(ctx)
	if err != nil {
		return model.AppData{}, "load meals", err
	}
	water, err := s.gw.GetAllWater(ctx)
	if err != nil {
		return model.AppData{}, "load water", err
	}
	weights, err := s.gw.GetAllWeights(ctx)
	if err != nil {
		return model.AppData{}, "load weights", err
	}
	settings, ok, err := s.gw.GetSettings(ctx)
	if err != nil {
		return model.AppData{}, "load settings", err
	}
	if !ok {
		settings = s.Settings()
		if startup {
			if err := s.gw.SaveSettings(ctx, settings); err != nil {
				return model.AppData{}, "save default settings", err
			}
		}
	}
	s.cacheSettings(ctx, settings)

	return model.AppData{
		Meals:    meals,
		Water:    water,
		Weights:  weights,
		Settings: settings,
	}, "", nil
}

// recoverLocked applies the fallback settings after a failed startup.
// Record lists stay empty. Callers hold initMu.
func (s *Store) recoverLocked(ctx context.Context, step string, cause error) error {
	s.log.Error("failed to initialize app state", "step", step, "err", cause)

	var cached model.Settings
	ok := false
	if s.fallback != nil {
		found, err := s.fallback.Get(ctx, kv.SettingsKey, &cached)
		switch {
		case err != nil:
			s.log.Warn("settings fallback unreadable", "err", err)
		case found && validate.Settings(cached) != nil:
			s.log.Warn("settings fallback invalid, ignoring", "err", validate.Settings(cached))
		default:
			ok = found
		}
	}

	s.mu.Lock()
	s.data.Meals = []model.MealEntry{}
	s.data.Water = []model.WaterEntry{}
	s.data.Weights = []model.WeightMetric{}
	if ok {
		s.data.Settings = cached
	}
	s.mu.Unlock()

	if ok {
		s.initialized = true
		s.recovered = true
		s.log.Info("settings recovered from fallback cache")
	}
	s.notifier.Notify(Notice{Level: NoticeError, Message: "Could not load your diary data"})
	return &InitError{Step: step, Err: cause, Recovered: ok}
}

func (s *Store) cacheSettings(ctx context.Context, st model.Settings) {
	if s.fallback == nil {
		return
	}
	if err := s.fallback.Set(ctx, kv.SettingsKey, st); err != nil {
		s.log.Warn("could not write settings fallback", "err", err)
	}
}
