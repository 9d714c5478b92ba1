// Package store provides the persistence gateway interface and its SQLite implementation.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

// ErrNotFound is returned when an update targets an id that does not exist.
var ErrNotFound = errors.New("record not found")

// OpError is a failed gateway operation on one record kind.
type OpError struct {
	Op   string
	Kind model.Kind
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op string, kind model.Kind, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Kind: kind, Err: err}
}

// Gateway is the typed CRUD surface over the embedded database.
type Gateway interface {
	// EnsureSchema opens the connection if needed and creates missing tables.
	EnsureSchema(ctx context.Context) error

	// AddMeal inserts a meal and returns the generated id.
	AddMeal(ctx context.Context, m model.MealEntry) (int64, error)
	GetMeal(ctx context.Context, id int64) (model.MealEntry, bool, error)
	GetMealsByDate(ctx context.Context, date string) ([]model.MealEntry, error)
	// GetAllMeals returns every meal, most recent first.
	GetAllMeals(ctx context.Context) ([]model.MealEntry, error)
	UpdateMeal(ctx context.Context, m model.MealEntry) error
	DeleteMeal(ctx context.Context, id int64) error

	AddWater(ctx context.Context, w model.WaterEntry) (int64, error)
	GetWater(ctx context.Context, id int64) (model.WaterEntry, bool, error)
	GetWaterByDate(ctx context.Context, date string) ([]model.WaterEntry, error)
	GetAllWater(ctx context.Context) ([]model.WaterEntry, error)
	UpdateWater(ctx context.Context, w model.WaterEntry) error
	DeleteWater(ctx context.Context, id int64) error

	AddWeight(ctx context.Context, w model.WeightMetric) (int64, error)
	GetWeight(ctx context.Context, id int64) (model.WeightMetric, bool, error)
	GetWeightsByDate(ctx context.Context, date string) ([]model.WeightMetric, error)
	GetAllWeights(ctx context.Context) ([]model.WeightMetric, error)
	UpdateWeight(ctx context.Context, w model.WeightMetric) error
	DeleteWeight(ctx context.Context, id int64) error

	// GetSettings returns the saved settings, ok=false when none were saved yet.
	GetSettings(ctx context.Context) (model.Settings, bool, error)
	// SaveSettings upserts the singleton settings row.
	SaveSettings(ctx context.Context, s model.Settings) error

	// ReplaceRecords swaps the meals, water and weights tables for the given content.
	ReplaceRecords(ctx context.Context, data model.AppData) error

	// Close releases the connection.
	Close() error
}
