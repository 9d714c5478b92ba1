// Package model defines the diary record kinds and the in-memory snapshot shape.
package model

// Kind names one of the record kinds held by the snapshot.
type Kind string

const (
	KindMeal     Kind = "meal"
	KindWater    Kind = "water"
	KindWeight   Kind = "weight"
	KindSettings Kind = "settings"
)

// MealEntry is one eaten meal or drink. ID is 0 until the gateway assigns one.
type MealEntry struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	MealType      string `json:"mealType"`
	Time          string `json:"time"`
	Description   string `json:"description"`
	PhotoPath     string `json:"photoPath,omitempty"`
	HungerLevel   int    `json:"hungerLevel"`
	FullnessLevel int    `json:"fullnessLevel"`
	EmotionBefore string `json:"emotionBefore,omitempty"`
	EmotionAfter  string `json:"emotionAfter,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// WaterEntry is one drink of water, amount in milliliters.
type WaterEntry struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Amount      int    `json:"amount"`
	ThirstLevel *int   `json:"thirstLevel,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// WeightMetric is a body weight measurement in kilograms.
type WeightMetric struct {
	ID     int64   `json:"id"`
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// Settings is the singleton preferences record.
type Settings struct {
	Theme            string  `json:"theme"`
	WaterWidget      bool    `json:"waterWidget"`
	MealCountWidget  bool    `json:"mealCountWidget"`
	WeightWidget     bool    `json:"weightWidget"`
	Height           int     `json:"height"`
	Weight           float64 `json:"weight"`
	KeepPhotosMonths *int    `json:"keepPhotosMonths,omitempty"`
}

// SettingsPatch carries a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	Theme            *string  `json:"theme,omitempty"`
	WaterWidget      *bool    `json:"waterWidget,omitempty"`
	MealCountWidget  *bool    `json:"mealCountWidget,omitempty"`
	WeightWidget     *bool    `json:"weightWidget,omitempty"`
	Height           *int     `json:"height,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	KeepPhotosMonths *int     `json:"keepPhotosMonths,omitempty"`
}

// Apply returns s with every non-nil patch field merged in.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.WaterWidget != nil {
		s.WaterWidget = *p.WaterWidget
	}
	if p.MealCountWidget != nil {
		s.MealCountWidget = *p.MealCountWidget
	}
	if p.WeightWidget != nil {
		s.WeightWidget = *p.WeightWidget
	}
	if p.Height != nil {
		s.Height = *p.Height
	}
	if p.Weight != nil {
		s.Weight = *p.Weight
	}
	if p.KeepPhotosMonths != nil {
		v := *p.KeepPhotosMonths
		s.KeepPhotosMonths = &v
	}
	return s
}

// AppData is the full snapshot. It doubles as the backup document layout.
type AppData struct {
	Meals    []MealEntry    `json:"meals"`
	Water    []WaterEntry   `json:"water"`
	Weights  []WeightMetric `json:"weights"`
	Settings Settings       `json:"settings"`
}

// Clone returns a copy that shares no slices or pointers with d.
func (d AppData) Clone() AppData {
	out := AppData{
		Meals:    append([]MealEntry(nil), d.Meals...),
		Water:    make([]WaterEntry, len(d.Water)),
		Weights:  append([]WeightMetric(nil), d.Weights...),
		Settings: d.Settings.Clone(),
	}
	for i, w := range d.Water {
		if w.ThirstLevel != nil {
			v := *w.ThirstLevel
			w.ThirstLevel = &v
		}
		out.Water[i] = w
	}
	if out.Meals == nil {
		out.Meals = []MealEntry{}
	}
	if out.Weights == nil {
		out.Weights = []WeightMetric{}
	}
	return out
}

// Clone copies s including its optional pointer fields.
func (s Settings) Clone() Settings {
	if s.KeepPhotosMonths != nil {
		v := *s.KeepPhotosMonths
		s.KeepPhotosMonths = &v
	}
	return s
}

// Theme values.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// ValidThemes are the allowed settings themes.
var ValidThemes = map[string]bool{
	ThemeLight:  true,
	ThemeDark:   true,
	ThemeSystem: true,
}

// ValidEmotions is the five-point scale used before and after a meal.
var ValidEmotions = map[string]bool{
	"very_bad":  true,
	"bad":       true,
	"neutral":   true,
	"good":      true,
	"very_good": true,
}

// DefaultSettings is the value in force until the gateway reports a saved row.
func DefaultSettings() Settings {
	return Settings{
		Theme:           ThemeSystem,
		WaterWidget:     true,
		MealCountWidget: true,
		WeightWidget:    true,
		Height:          170,
		Weight:          70,
	}
}
