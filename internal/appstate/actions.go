package appstate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/validate"
)

var kindNouns = map[model.Kind]string{
	model.KindMeal:     "meal",
	model.KindWater:    "water entry",
	model.KindWeight:   "weight",
	model.KindSettings: "settings",
}

var opVerbs = map[string]string{
	"add":     "save",
	"update":  "update",
	"delete":  "delete",
	"cleanup": "clean up old photos of",
}

// fail logs a rejected or failed action, tells the user and returns err.
func (s *Store) fail(op string, kind model.Kind, err error, attrs ...any) error {
	args := append([]any{"op", op, "kind", kind}, attrs...)

	var ve *validate.Error
	if errors.As(err, &ve) {
		s.log.Warn("validation failed", append(args, "errors", ve.Problems)...)
		s.notifier.Notify(Notice{Level: NoticeError, Message: "Error: " + strings.Join(ve.Problems, ", ")})
		return err
	}

	s.log.Error("action failed", append(args, "err", err)...)
	verb := opVerbs[op]
	if verb == "" {
		verb = op
	}
	s.notifier.Notify(Notice{Level: NoticeError, Message: fmt.Sprintf("Could not %s %s", verb, kindNouns[kind])})
	return err
}

func missingID(kind model.Kind, id int64) error {
	return &store.OpError{Op: "update", Kind: kind, Err: fmt.Errorf("%w: id %d", store.ErrNotFound, id)}
}

// AddMeal validates and stores a new meal and returns it with its id.
func (s *Store) AddMeal(ctx context.Context, m model.MealEntry) (model.MealEntry, error) {
	m.ID = 0
	if err := validate.Meal(m); err != nil {
		return model.MealEntry{}, s.fail("add", model.KindMeal, err, "date", m.Date)
	}

	s.mealMu.Lock()
	id, err := s.gw.AddMeal(ctx, m)
	if err == nil {
		m.ID = id
		s.mu.Lock()
		s.data.Meals = placeSorted(s.data.Meals, m, mealID, mealNewer)
		s.mu.Unlock()
	}
	s.mealMu.Unlock()

	if err != nil {
		return model.MealEntry{}, s.fail("add", model.KindMeal, err, "date", m.Date)
	}
	s.emit()
	return m, nil
}

// UpdateMeal replaces the meal with the same id. A photo that the update
// drops or replaces is deleted afterwards.
func (s *Store) UpdateMeal(ctx context.Context, m model.MealEntry) error {
	if err := validate.Meal(m); err != nil {
		return s.fail("update", model.KindMeal, err, "id", m.ID)
	}
	if m.ID <= 0 {
		return s.fail("update", model.KindMeal, missingID(model.KindMeal, m.ID), "id", m.ID)
	}

	s.mealMu.Lock()
	s.mu.RLock()
	prev, hadPrev := findByID(s.data.Meals, m.ID, mealID)
	s.mu.RUnlock()
	if !hadPrev {
		prev, hadPrev, _ = s.gw.GetMeal(ctx, m.ID)
	}

	err := s.gw.UpdateMeal(ctx, m)
	if err == nil {
		s.mu.Lock()
		s.data.Meals = placeSorted(s.data.Meals, m, mealID, mealNewer)
		s.mu.Unlock()
	}
	s.mealMu.Unlock()

	if err != nil {
		return s.fail("update", model.KindMeal, err, "id", m.ID)
	}
	if hadPrev && prev.PhotoPath != "" && prev.PhotoPath != m.PhotoPath {
		if perr := s.photos.Delete(ctx, prev.PhotoPath); perr != nil {
			s.log.Warn("could not delete replaced photo", "id", m.ID, "photo", prev.PhotoPath, "err", perr)
		}
	}
	s.emit()
	return nil
}

// DeleteMeal removes a meal and its photo. Unknown ids are a no-op.
func (s *Store) DeleteMeal(ctx context.Context, id int64) error {
	s.mealMu.Lock()
	err := s.deleteMealLocked(ctx, id)
	s.mealMu.Unlock()

	if err != nil {
		return s.fail("delete", model.KindMeal, err, "id", id)
	}
	s.emit()
	return nil
}

func (s *Store) deleteMealLocked(ctx context.Context, id int64) error {
	m, ok, err := s.gw.GetMeal(ctx, id)
	if err != nil {
		return err
	}
	if ok && m.PhotoPath != "" {
		if err := s.photos.Delete(ctx, m.PhotoPath); err != nil {
			return err
		}
	}
	if err := s.gw.DeleteMeal(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.data.Meals = withoutID(s.data.Meals, id, mealID)
	s.mu.Unlock()
	return nil
}

// AddWater validates and stores a new water entry.
func (s *Store) AddWater(ctx context.Context, w model.WaterEntry) (model.WaterEntry, error) {
	w.ID = 0
	if err := validate.Water(w); err != nil {
		return model.WaterEntry{}, s.fail("add", model.KindWater, err, "date", w.Date, "amount", w.Amount)
	}

	s.waterMu.Lock()
	id, err := s.gw.AddWater(ctx, w)
	if err == nil {
		w.ID = id
		s.mu.Lock()
		s.data.Water = placeSorted(s.data.Water, w, waterID, waterNewer)
		s.mu.Unlock()
	}
	s.waterMu.Unlock()

	if err != nil {
		return model.WaterEntry{}, s.fail("add", model.KindWater, err, "date", w.Date, "amount", w.Amount)
	}
	s.emit()
	return w, nil
}

// UpdateWater replaces the water entry with the same id.
func (s *Store) UpdateWater(ctx context.Context, w model.WaterEntry) error {
	if err := validate.Water(w); err != nil {
		return s.fail("update", model.KindWater, err, "id", w.ID)
	}
	if w.ID <= 0 {
		return s.fail("update", model.KindWater, missingID(model.KindWater, w.ID), "id", w.ID)
	}

	s.waterMu.Lock()
	err := s.gw.UpdateWater(ctx, w)
	if err == nil {
		s.mu.Lock()
		s.data.Water = placeSorted(s.data.Water, w, waterID, waterNewer)
		s.mu.Unlock()
	}
	s.waterMu.Unlock()

	if err != nil {
		return s.fail("update", model.KindWater, err, "id", w.ID)
	}
	s.emit()
	return nil
}

// DeleteWater removes a water entry. Unknown ids are a no-op.
func (s *Store) DeleteWater(ctx context.Context, id int64) error {
	s.waterMu.Lock()
	err := s.gw.DeleteWater(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.data.Water = withoutID(s.data.Water, id, waterID)
		s.mu.Unlock()
	}
	s.waterMu.Unlock()

	if err != nil {
		return s.fail("delete", model.KindWater, err, "id", id)
	}
	s.emit()
	return nil
}

// AddWeight validates and stores a new weight measurement.
func (s *Store) AddWeight(ctx context.Context, w model.WeightMetric) (model.WeightMetric, error) {
	w.ID = 0
	if err := validate.Weight(w); err != nil {
		return model.WeightMetric{}, s.fail("add", model.KindWeight, err, "date", w.Date, "weight", w.Weight)
	}

	s.weightMu.Lock()
	id, err := s.gw.AddWeight(ctx, w)
	if err == nil {
		w.ID = id
		s.mu.Lock()
		s.data.Weights = placeSorted(s.data.Weights, w, weightID, weightNewer)
		s.mu.Unlock()
	}
	s.weightMu.Unlock()

	if err != nil {
		return model.WeightMetric{}, s.fail("add", model.KindWeight, err, "date", w.Date, "weight", w.Weight)
	}
	s.emit()
	return w, nil
}

// UpdateWeight replaces the measurement with the same id.
func (s *Store) UpdateWeight(ctx context.Context, w model.WeightMetric) error {
	if err := validate.Weight(w); err != nil {
		return s.fail("update", model.KindWeight, err, "id", w.ID)
	}
	if w.ID <= 0 {
		return s.fail("update", model.KindWeight, missingID(model.KindWeight, w.ID), "id", w.ID)
	}

	s.weightMu.Lock()
	err := s.gw.UpdateWeight(ctx, w)
	if err == nil {
		s.mu.Lock()
		s.data.Weights = placeSorted(s.data.Weights, w, weightID, weightNewer)
		s.mu.Unlock()
	}
	s.weightMu.Unlock()

	if err != nil {
		return s.fail("update", model.KindWeight, err, "id", w.ID)
	}
	s.emit()
	return nil
}

// DeleteWeight removes a measurement. Unknown ids are a no-op.
func (s *Store) DeleteWeight(ctx context.Context, id int64) error {
	s.weightMu.Lock()
	err := s.gw.DeleteWeight(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.data.Weights = withoutID(s.data.Weights, id, weightID)
		s.mu.Unlock()
	}
	s.weightMu.Unlock()

	if err != nil {
		return s.fail("delete", model.KindWeight, err, "id", id)
	}
	s.emit()
	return nil
}

// UpdateSettings merges patch into the current settings, validates the
// result, saves it and mirrors it into the fallback cache. Before the store
// is initialized the saved settings row, if any, is the merge base.
func (s *Store) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	s.settingsMu.Lock()
	base, err := s.settingsBase(ctx)
	if err != nil {
		s.settingsMu.Unlock()
		return model.Settings{}, s.fail("update", model.KindSettings, err)
	}
	merged := patch.Apply(base)
	err = validate.Settings(merged)
	if err == nil {
		err = s.gw.SaveSettings(ctx, merged)
	}
	if err == nil {
		s.cacheSettings(ctx, merged)
		s.mu.Lock()
		s.data.Settings = merged.Clone()
		s.mu.Unlock()
	}
	s.settingsMu.Unlock()

	if err != nil {
		return model.Settings{}, s.fail("update", model.KindSettings, err, "theme", merged.Theme)
	}
	s.emit()
	return merged, nil
}

func (s *Store) settingsBase(ctx context.Context) (model.Settings, error) {
	if s.Initialized() {
		return s.Settings(), nil
	}
	saved, ok, err := s.gw.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if !ok {
		return s.Settings(), nil
	}
	return saved, nil
}
