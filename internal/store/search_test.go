package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

func TestSearch_Basic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AddMeal(ctx, model.MealEntry{Date: "2024-05-01", MealType: "lunch", Time: "12:00", Description: "Chicken salad"})
	s.AddMeal(ctx, model.MealEntry{Date: "2024-05-02", MealType: "dinner", Time: "19:00", Description: "pasta", Notes: "with salad"})
	s.AddMeal(ctx, model.MealEntry{Date: "2024-05-03", MealType: "snack", Time: "16:00", Description: "apple"})

	results, err := s.SearchMeals(ctx, SearchParams{Query: "salad"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Date != "2024-05-02" {
		t.Fatalf("expected newest first, got %s", results[0].Date)
	}

	results, _ = s.SearchMeals(ctx, SearchParams{Query: "salad", From: "2024-05-02"})
	if len(results) != 1 {
		t.Fatalf("expected date filter to leave 1, got %d", len(results))
	}

	results, _ = s.SearchMeals(ctx, SearchParams{Query: "snack"})
	if len(results) != 1 || results[0].Description != "apple" {
		t.Fatalf("expected meal type match, got %+v", results)
	}

	results, _ = s.SearchMeals(ctx, SearchParams{Query: "nonexistent"})
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearch_DeletedExcluded(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.AddMeal(ctx, model.MealEntry{Date: "2024-05-01", MealType: "lunch", Time: "12:00", Description: "this should not appear"})
	s.DeleteMeal(ctx, id)

	results, err := s.SearchMeals(ctx, SearchParams{Query: "should not appear"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0, got %d", len(results))
	}
}

func TestSearch_Limit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, d := range []string{"2024-05-01", "2024-05-02", "2024-05-03"} {
		s.AddMeal(ctx, model.MealEntry{Date: d, MealType: "lunch", Time: "12:00", Description: "soup"})
	}
	results, _ := s.SearchMeals(ctx, SearchParams{Query: "soup", Limit: 2})
	if len(results) != 2 {
		t.Fatalf("expected limit 2, got %d", len(results))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AddMeal(ctx, model.MealEntry{Date: "2024-05-01", MealType: "lunch", Time: "12:00", PhotoPath: "photos/a.jpg"})
	s.AddMeal(ctx, model.MealEntry{Date: "2024-05-02", MealType: "lunch", Time: "12:00"})
	s.AddWater(ctx, model.WaterEntry{Date: "2024-04-30", Time: "09:00", Amount: 250})
	s.AddWater(ctx, model.WaterEntry{Date: "2024-05-01", Time: "09:00", Amount: 500})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Meals != 2 || stats.MealsWithPhoto != 1 || stats.Water != 2 || stats.WaterTotalML != 750 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.FirstDate != "2024-04-30" || stats.LastDate != "2024-05-02" {
		t.Fatalf("unexpected date span: %s..%s", stats.FirstDate, stats.LastDate)
	}
	if stats.HasSettings {
		t.Fatal("expected no settings row")
	}
	if stats.DBSizeBytes == 0 {
		t.Fatal("expected non-zero db size")
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s1 := NewSQLiteStore(filepath.Join(dir, "src.db"))
	defer s1.Close()

	s1.AddMeal(ctx, model.MealEntry{Date: "2024-05-01", MealType: "lunch", Time: "12:00", Description: "alpha"})
	s1.AddWeight(ctx, model.WeightMetric{Date: "2024-05-01", Weight: 70})

	meals, _ := s1.GetAllMeals(ctx)
	weights, _ := s1.GetAllWeights(ctx)

	s2 := NewSQLiteStore(filepath.Join(dir, "dst.db"))
	defer s2.Close()

	if err := s2.ReplaceRecords(ctx, model.AppData{Meals: meals, Weights: weights}); err != nil {
		t.Fatal(err)
	}

	got, _ := s2.GetAllMeals(ctx)
	if len(got) != 1 || got[0] != meals[0] {
		t.Fatalf("expected identical meal after import, got %+v", got)
	}
	gotW, _ := s2.GetAllWeights(ctx)
	if len(gotW) != 1 || gotW[0].ID != weights[0].ID {
		t.Fatalf("expected weight with original id, got %+v", gotW)
	}
}
