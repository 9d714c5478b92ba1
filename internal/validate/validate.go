// Package validate checks diary records before they are written.
//
// Every rule is applied independently so a single call reports all problems
// with a candidate, in a stable order.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

// Problem messages. Tests and callers match on these.
const (
	MsgDateMissing      = "date is required"
	MsgDateFormat       = "invalid date format (expected YYYY-MM-DD)"
	MsgTimeMissing      = "time is required"
	MsgTimeFormat       = "invalid time format (expected HH:MM or HH:MM:SS)"
	MsgMealTypeMissing  = "meal type is required"
	MsgHungerRange      = "hunger level must be between 0 and 10"
	MsgFullnessRange    = "fullness level must be between 0 and 10"
	MsgEmotionBefore    = "emotion before must be one of very_bad, bad, neutral, good, very_good"
	MsgEmotionAfter     = "emotion after must be one of very_bad, bad, neutral, good, very_good"
	MsgAmountMissing    = "water amount is required"
	MsgAmountRange      = "water amount must be between 1 and 3000 ml"
	MsgThirstRange      = "thirst level must be between 0 and 10"
	MsgWeightMissing    = "weight is required"
	MsgWeightRange      = "weight must be between 20 and 500 kg"
	MsgThemeInvalid     = "invalid theme (expected light, dark or system)"
	MsgHeightRange      = "height must be between 50 and 250 cm"
	MsgKeepPhotosMonths = "photo retention must be at least 1 month"
)

// Error is a rejected candidate with every violated rule.
type Error struct {
	Kind     model.Kind
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(e.Problems, "; "))
}

// Has reports whether msg is among the problems.
func (e *Error) Has(msg string) bool {
	for _, p := range e.Problems {
		if p == msg {
			return true
		}
	}
	return false
}

func result(kind model.Kind, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &Error{Kind: kind, Problems: problems}
}

func checkDate(date string, problems []string) []string {
	if date == "" {
		return append(problems, MsgDateMissing)
	}
	if !dateRe.MatchString(date) {
		problems = append(problems, MsgDateFormat)
	}
	return problems
}

func checkTime(t string, problems []string) []string {
	if t == "" {
		return append(problems, MsgTimeMissing)
	}
	if !timeRe.MatchString(t) {
		problems = append(problems, MsgTimeFormat)
	}
	return problems
}

func inRange(v, lo, hi int) bool { return v >= lo && v <= hi }

// kgInRange is false for NaN and infinities.
func kgInRange(kg float64) bool {
	return !math.IsNaN(kg) && !math.IsInf(kg, 0) && kg >= 20 && kg <= 500
}

// Meal validates a meal candidate. The ID is ignored.
func Meal(m model.MealEntry) error {
	var problems []string
	problems = checkDate(m.Date, problems)
	if strings.TrimSpace(m.MealType) == "" {
		problems = append(problems, MsgMealTypeMissing)
	}
	problems = checkTime(m.Time, problems)
	if !inRange(m.HungerLevel, 0, 10) {
		problems = append(problems, MsgHungerRange)
	}
	if !inRange(m.FullnessLevel, 0, 10) {
		problems = append(problems, MsgFullnessRange)
	}
	if m.EmotionBefore != "" && !model.ValidEmotions[m.EmotionBefore] {
		problems = append(problems, MsgEmotionBefore)
	}
	if m.EmotionAfter != "" && !model.ValidEmotions[m.EmotionAfter] {
		problems = append(problems, MsgEmotionAfter)
	}
	return result(model.KindMeal, problems)
}

// Water validates a water candidate. A zero amount counts as missing.
func Water(w model.WaterEntry) error {
	var problems []string
	problems = checkDate(w.Date, problems)
	problems = checkTime(w.Time, problems)
	switch {
	case w.Amount == 0:
		problems = append(problems, MsgAmountMissing)
	case w.Amount < 0 || w.Amount > 3000:
		problems = append(problems, MsgAmountRange)
	}
	if w.ThirstLevel != nil && !inRange(*w.ThirstLevel, 0, 10) {
		problems = append(problems, MsgThirstRange)
	}
	return result(model.KindWater, problems)
}

// Weight validates a weight candidate. A zero weight counts as missing.
func Weight(w model.WeightMetric) error {
	var problems []string
	problems = checkDate(w.Date, problems)
	switch {
	case w.Weight == 0:
		problems = append(problems, MsgWeightMissing)
	case !kgInRange(w.Weight):
		problems = append(problems, MsgWeightRange)
	}
	return result(model.KindWeight, problems)
}

// Settings validates a complete, already merged settings value.
func Settings(s model.Settings) error {
	var problems []string
	if !model.ValidThemes[s.Theme] {
		problems = append(problems, MsgThemeInvalid)
	}
	if !inRange(s.Height, 50, 250) {
		problems = append(problems, MsgHeightRange)
	}
	if !kgInRange(s.Weight) {
		problems = append(problems, MsgWeightRange)
	}
	if s.KeepPhotosMonths != nil && *s.KeepPhotosMonths < 1 {
		problems = append(problems, MsgKeepPhotosMonths)
	}
	return result(model.KindSettings, problems)
}
