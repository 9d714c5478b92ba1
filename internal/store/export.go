package store

import (
	"context"
	"database/sql"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

// ReplaceRecords deletes every meal, water and weight row and inserts the given
// ones with their original ids, in one transaction. Settings are not touched.
func (s *SQLiteStore) ReplaceRecords(ctx context.Context, data model.AppData) error {
	db, err := s.conn()
	if err != nil {
		return opErr("replace", "records", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return opErr("replace", "records", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"meals", "water", "weights"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return opErr("replace", "records", err)
		}
	}

	for _, m := range data.Meals {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO meals (id, date, mealType, time, description, photoPath, hungerLevel, fullnessLevel,
			                    emotionBefore, emotionAfter, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullID(m.ID), m.Date, m.MealType, m.Time, m.Description, nullString(m.PhotoPath),
			m.HungerLevel, m.FullnessLevel,
			nullString(m.EmotionBefore), nullString(m.EmotionAfter), nullString(m.Notes))
		if err != nil {
			return opErr("replace", model.KindMeal, err)
		}
	}
	for _, w := range data.Water {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO water (id, date, time, amount, thirstLevel, notes) VALUES (?, ?, ?, ?, ?, ?)`,
			nullID(w.ID), w.Date, w.Time, w.Amount, nullInt(w.ThirstLevel), nullString(w.Notes))
		if err != nil {
			return opErr("replace", model.KindWater, err)
		}
	}
	for _, w := range data.Weights {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO weights (id, date, weight) VALUES (?, ?, ?)`,
			nullID(w.ID), w.Date, w.Weight)
		if err != nil {
			return opErr("replace", model.KindWeight, err)
		}
	}

	return opErr("replace", "records", tx.Commit())
}

// nullID lets SQLite assign a fresh key for records that never had one.
func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}
