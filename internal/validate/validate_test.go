package validate

import (
	"errors"
	"math"
	"testing"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

func validMeal() model.MealEntry {
	return model.MealEntry{
		Date:          "2024-05-01",
		MealType:      "breakfast",
		Time:          "08:30",
		Description:   "oatmeal",
		HungerLevel:   6,
		FullnessLevel: 8,
		EmotionBefore: "neutral",
		EmotionAfter:  "good",
	}
}

func problemsOf(t *testing.T, err error) *Error {
	t.Helper()
	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	return ve
}

func TestMealAccepted(t *testing.T) {
	if err := Meal(validMeal()); err != nil {
		t.Fatalf("expected valid meal, got %v", err)
	}
	m := validMeal()
	m.Time = "08:30:15"
	if err := Meal(m); err != nil {
		t.Fatalf("expected HH:MM:SS to be accepted, got %v", err)
	}
}

func TestMealHungerRange(t *testing.T) {
	m := validMeal()
	m.HungerLevel = 11
	ve := problemsOf(t, Meal(m))
	if !ve.Has(MsgHungerRange) {
		t.Errorf("expected hunger range problem, got %v", ve.Problems)
	}
	if len(ve.Problems) != 1 {
		t.Errorf("expected exactly 1 problem, got %v", ve.Problems)
	}
}

func TestMealReportsEveryProblem(t *testing.T) {
	m := model.MealEntry{
		Date:          "01/05/2024",
		Time:          "8h",
		HungerLevel:   -1,
		FullnessLevel: 12,
		EmotionBefore: "ecstatic",
	}
	ve := problemsOf(t, Meal(m))
	want := []string{MsgDateFormat, MsgMealTypeMissing, MsgTimeFormat, MsgHungerRange, MsgFullnessRange, MsgEmotionBefore}
	if len(ve.Problems) != len(want) {
		t.Fatalf("expected %d problems, got %v", len(want), ve.Problems)
	}
	for i, msg := range want {
		if ve.Problems[i] != msg {
			t.Errorf("problem %d: expected %q, got %q", i, msg, ve.Problems[i])
		}
	}
	if ve.Kind != model.KindMeal {
		t.Errorf("expected kind meal, got %q", ve.Kind)
	}
}

func TestMissingDateSkipsFormatCheck(t *testing.T) {
	m := validMeal()
	m.Date = ""
	ve := problemsOf(t, Meal(m))
	if !ve.Has(MsgDateMissing) || ve.Has(MsgDateFormat) {
		t.Errorf("expected only the missing-date problem, got %v", ve.Problems)
	}
}

func TestWater(t *testing.T) {
	ok := model.WaterEntry{Date: "2024-05-01", Time: "09:00", Amount: 250}
	if err := Water(ok); err != nil {
		t.Fatalf("expected valid water, got %v", err)
	}

	over := ok
	over.Amount = 5000
	if ve := problemsOf(t, Water(over)); !ve.Has(MsgAmountRange) {
		t.Errorf("expected amount range problem, got %v", ve.Problems)
	}

	edge := ok
	edge.Amount = 3000
	if err := Water(edge); err != nil {
		t.Errorf("expected 3000 ml to be accepted, got %v", err)
	}

	missing := model.WaterEntry{}
	ve := problemsOf(t, Water(missing))
	for _, msg := range []string{MsgDateMissing, MsgTimeMissing, MsgAmountMissing} {
		if !ve.Has(msg) {
			t.Errorf("expected %q in %v", msg, ve.Problems)
		}
	}

	thirst := 14
	bad := ok
	bad.ThirstLevel = &thirst
	if ve := problemsOf(t, Water(bad)); !ve.Has(MsgThirstRange) {
		t.Errorf("expected thirst range problem, got %v", ve.Problems)
	}
}

func TestWeight(t *testing.T) {
	if err := Weight(model.WeightMetric{Date: "2024-05-01", Weight: 72.4}); err != nil {
		t.Fatalf("expected valid weight, got %v", err)
	}
	ve := problemsOf(t, Weight(model.WeightMetric{Date: "2024-05-01", Weight: 19.9}))
	if !ve.Has(MsgWeightRange) {
		t.Errorf("expected weight range problem, got %v", ve.Problems)
	}
	ve = problemsOf(t, Weight(model.WeightMetric{}))
	if !ve.Has(MsgDateMissing) || !ve.Has(MsgWeightMissing) {
		t.Errorf("expected missing date and weight, got %v", ve.Problems)
	}
}

func TestSettings(t *testing.T) {
	if err := Settings(model.DefaultSettings()); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}

	s := model.DefaultSettings()
	s.Theme = "sepia"
	s.Height = 300
	s.Weight = 10
	zero := 0
	s.KeepPhotosMonths = &zero
	ve := problemsOf(t, Settings(s))
	want := []string{MsgThemeInvalid, MsgHeightRange, MsgWeightRange, MsgKeepPhotosMonths}
	if len(ve.Problems) != len(want) {
		t.Fatalf("expected %v, got %v", want, ve.Problems)
	}
	if ve.Error() == "" {
		t.Error("expected non-empty error text")
	}
}

func TestWeightNotFinite(t *testing.T) {
	for _, kg := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		ve := problemsOf(t, Weight(model.WeightMetric{Date: "2024-05-01", Weight: kg}))
		if !ve.Has(MsgWeightRange) || len(ve.Problems) != 1 {
			t.Errorf("weight %v: expected only the range problem, got %v", kg, ve.Problems)
		}

		s := model.DefaultSettings()
		s.Weight = kg
		ve = problemsOf(t, Settings(s))
		if !ve.Has(MsgWeightRange) {
			t.Errorf("settings weight %v: expected range problem, got %v", kg, ve.Problems)
		}
	}
}
