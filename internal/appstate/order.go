package appstate

import "github.com/fooddiary/wellbeing-diary-nexus/internal/model"

// The snapshot keeps the gateway's listing order: date, then time, then id,
// all descending.

func mealNewer(a, b model.MealEntry) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	if a.Time != b.Time {
		return a.Time > b.Time
	}
	return a.ID > b.ID
}

func waterNewer(a, b model.WaterEntry) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	if a.Time != b.Time {
		return a.Time > b.Time
	}
	return a.ID > b.ID
}

func weightNewer(a, b model.WeightMetric) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.ID > b.ID
}

func mealID(m model.MealEntry) int64      { return m.ID }
func waterID(w model.WaterEntry) int64    { return w.ID }
func weightID(w model.WeightMetric) int64 { return w.ID }

// withoutID returns a new slice lacking the item with the given id.
func withoutID[T any](list []T, id int64, idOf func(T) int64) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

// placeSorted returns a new slice with item inserted at its ordered position,
// replacing any existing item with the same id.
func placeSorted[T any](list []T, item T, idOf func(T) int64, newer func(a, b T) bool) []T {
	rest := withoutID(list, idOf(item), idOf)
	out := make([]T, 0, len(rest)+1)
	placed := false
	for _, cur := range rest {
		if !placed && newer(item, cur) {
			out = append(out, item)
			placed = true
		}
		out = append(out, cur)
	}
	if !placed {
		out = append(out, item)
	}
	return out
}

func findByID[T any](list []T, id int64, idOf func(T) int64) (T, bool) {
	for _, item := range list {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}
