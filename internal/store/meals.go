package store

import (
	"context"
	"database/sql"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

const mealColumns = `id, date, mealType, time, description, photoPath, hungerLevel, fullnessLevel,
	emotionBefore, emotionAfter, notes`

func (s *SQLiteStore) AddMeal(ctx context.Context, m model.MealEntry) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, opErr("add", model.KindMeal, err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO meals (date, mealType, time, description, photoPath, hungerLevel, fullnessLevel,
		                    emotionBefore, emotionAfter, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Date, m.MealType, m.Time, m.Description, nullString(m.PhotoPath),
		m.HungerLevel, m.FullnessLevel,
		nullString(m.EmotionBefore), nullString(m.EmotionAfter), nullString(m.Notes))
	if err != nil {
		return 0, opErr("add", model.KindMeal, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, opErr("add", model.KindMeal, err)
	}
	return id, nil
}

func (s *SQLiteStore) GetMeal(ctx context.Context, id int64) (model.MealEntry, bool, error) {
	db, err := s.conn()
	if err != nil {
		return model.MealEntry{}, false, opErr("get", model.KindMeal, err)
	}
	m, err := scanMeal(db.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.MealEntry{}, false, nil
	}
	if err != nil {
		return model.MealEntry{}, false, opErr("get", model.KindMeal, err)
	}
	return m, true, nil
}

func (s *SQLiteStore) GetMealsByDate(ctx context.Context, date string) ([]model.MealEntry, error) {
	return s.queryMeals(ctx, "list by date",
		`SELECT `+mealColumns+` FROM meals WHERE date = ? ORDER BY time DESC, id DESC`, date)
}

func (s *SQLiteStore) GetAllMeals(ctx context.Context) ([]model.MealEntry, error) {
	return s.queryMeals(ctx, "list",
		`SELECT `+mealColumns+` FROM meals ORDER BY date DESC, time DESC, id DESC`)
}

func (s *SQLiteStore) UpdateMeal(ctx context.Context, m model.MealEntry) error {
	db, err := s.conn()
	if err != nil {
		return opErr("update", model.KindMeal, err)
	}
	err = execAffecting(ctx, db,
		`UPDATE meals SET date = ?, mealType = ?, time = ?, description = ?, photoPath = ?,
		        hungerLevel = ?, fullnessLevel = ?, emotionBefore = ?, emotionAfter = ?, notes = ?
		 WHERE id = ?`,
		m.Date, m.MealType, m.Time, m.Description, nullString(m.PhotoPath),
		m.HungerLevel, m.FullnessLevel,
		nullString(m.EmotionBefore), nullString(m.EmotionAfter), nullString(m.Notes), m.ID)
	return opErr("update", model.KindMeal, err)
}

func (s *SQLiteStore) DeleteMeal(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return opErr("delete", model.KindMeal, err)
	}
	_, err = db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	return opErr("delete", model.KindMeal, err)
}

func (s *SQLiteStore) queryMeals(ctx context.Context, op, query string, args ...interface{}) ([]model.MealEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, opErr(op, model.KindMeal, err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opErr(op, model.KindMeal, err)
	}
	defer rows.Close()

	meals := []model.MealEntry{}
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, opErr(op, model.KindMeal, err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr(op, model.KindMeal, err)
	}
	return meals, nil
}

func scanMeal(row scanner) (model.MealEntry, error) {
	var m model.MealEntry
	var date, mealType, tm, description, photoPath, before, after, notes sql.NullString
	var hunger, fullness sql.NullInt64

	err := row.Scan(&m.ID, &date, &mealType, &tm, &description, &photoPath,
		&hunger, &fullness, &before, &after, &notes)
	if err != nil {
		return m, err
	}

	m.Date = date.String
	m.MealType = mealType.String
	m.Time = tm.String
	m.Description = description.String
	m.PhotoPath = photoPath.String
	m.HungerLevel = int(hunger.Int64)
	m.FullnessLevel = int(fullness.Int64)
	m.EmotionBefore = before.String
	m.EmotionAfter = after.String
	m.Notes = notes.String
	return m, nil
}
