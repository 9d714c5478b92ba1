package backup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.SQLiteStore) {
	t.Helper()
	dir := t.TempDir()
	db := store.NewSQLiteStore(filepath.Join(dir, "diary.db"))
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := New(db, filepath.Join(dir, "backup"), nil)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 15, 250_000_000, time.UTC) }
	return e, db
}

func TestNameRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 30, 15, 250_000_000, time.UTC)
	name := NameFor(at)
	if name != "wellbeing_backup_2024-05-01T10-30-15.250Z.json" {
		t.Fatalf("unexpected name %q", name)
	}
	got, ok := ParseName(name)
	if !ok || !got.Equal(at) {
		t.Errorf("parse %q: got %v ok=%v", name, got, ok)
	}
	if _, ok := ParseName("notes.json"); ok {
		t.Error("foreign file parsed as backup")
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	got, err := e.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestCreateWritesAllKinds(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	db.AddMeal(ctx, model.MealEntry{Date: "2024-05-01", MealType: "lunch", Time: "12:00", HungerLevel: 5, FullnessLevel: 5})
	db.AddWater(ctx, model.WaterEntry{Date: "2024-05-01", Time: "09:00", Amount: 250})
	db.AddWeight(ctx, model.WeightMetric{Date: "2024-05-01", Weight: 70.5})
	st := model.DefaultSettings()
	st.Theme = model.ThemeDark
	db.SaveSettings(ctx, st)

	name, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	body, err := os.ReadFile(filepath.Join(e.Dir(), name))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("artifact is not json: %v", err)
	}
	for _, key := range []string{"meals", "water", "weights", "settings"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("artifact lacks %q", key)
		}
	}

	data, err := e.Load(ctx, name)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(data.Meals) != 1 || len(data.Water) != 1 || len(data.Weights) != 1 || data.Settings.Theme != model.ThemeDark {
		t.Errorf("unexpected artifact content: %+v", data)
	}
}

func TestCreateAvoidsCollisionAndListsNewestFirst(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first == second {
		t.Fatalf("names collided: %s", first)
	}

	os.WriteFile(filepath.Join(e.Dir(), "unrelated.txt"), []byte("x"), 0o644)

	list, err := e.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 backups, got %+v", list)
	}
	if list[0].Name != second || list[1].Name != first {
		t.Errorf("not newest first: %+v", list)
	}
}

func TestRestoreSettingsOnly(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	keep := 6
	st := model.Settings{Theme: model.ThemeLight, WaterWidget: false, MealCountWidget: true, WeightWidget: false, Height: 182, Weight: 80.5, KeepPhotosMonths: &keep}
	db.SaveSettings(ctx, st)
	db.AddWater(ctx, model.WaterEntry{Date: "2024-05-01", Time: "09:00", Amount: 250})

	name, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	db.SaveSettings(ctx, model.DefaultSettings())
	db.AddWater(ctx, model.WaterEntry{Date: "2024-05-02", Time: "09:00", Amount: 100})

	if err := e.Restore(ctx, name, RestoreOptions{}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, ok, err := db.GetSettings(ctx)
	if err != nil || !ok {
		t.Fatalf("get settings: ok=%v err=%v", ok, err)
	}
	if got.Theme != st.Theme || got.WaterWidget != st.WaterWidget || got.MealCountWidget != st.MealCountWidget ||
		got.WeightWidget != st.WeightWidget || got.Height != st.Height || got.Weight != st.Weight ||
		got.KeepPhotosMonths == nil || *got.KeepPhotosMonths != keep {
		t.Errorf("settings not restored: %+v", got)
	}

	water, _ := db.GetAllWater(ctx)
	if len(water) != 2 {
		t.Errorf("settings-only restore touched records: %+v", water)
	}
}

func TestRestoreRecordsReplacesTables(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	id, _ := db.AddMeal(ctx, model.MealEntry{Date: "2024-05-01", MealType: "lunch", Time: "12:00"})
	name, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	db.DeleteMeal(ctx, id)
	db.AddMeal(ctx, model.MealEntry{Date: "2024-05-03", MealType: "dinner", Time: "19:00"})

	if err := e.Restore(ctx, name, RestoreOptions{Records: true}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	meals, _ := db.GetAllMeals(ctx)
	if len(meals) != 1 || meals[0].ID != id || meals[0].MealType != "lunch" {
		t.Errorf("records not replaced: %+v", meals)
	}
}

func TestRestoreErrors(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	err := e.Restore(ctx, "wellbeing_backup_missing.json", RestoreOptions{})
	var ae *ArtifactError
	if !errors.As(err, &ae) || !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected not-found artifact error, got %v", err)
	}

	os.MkdirAll(e.Dir(), 0o755)
	os.WriteFile(filepath.Join(e.Dir(), "wellbeing_backup_bad.json"), []byte("{not json"), 0o644)
	err = e.Restore(ctx, "wellbeing_backup_bad.json", RestoreOptions{})
	if !errors.As(err, &ae) || errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected parse artifact error, got %v", err)
	}

	if err := e.Restore(ctx, "../diary.db", RestoreOptions{}); !errors.As(err, &ae) {
		t.Fatalf("expected path rejection, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	keep, _ := e.Create(ctx)
	e.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	drop, _ := e.Create(ctx)

	if err := e.Delete(ctx, drop); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := e.Delete(ctx, drop); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("second delete should report not found, got %v", err)
	}
	list, _ := e.List(ctx)
	if len(list) != 1 || list[0].Name != keep {
		t.Errorf("unexpected remaining backups: %+v", list)
	}
}
