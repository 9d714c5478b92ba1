package store

import (
	"context"
	"database/sql"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

const waterColumns = `id, date, time, amount, thirstLevel, notes`

func (s *SQLiteStore) AddWater(ctx context.Context, w model.WaterEntry) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, opErr("add", model.KindWater, err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO water (date, time, amount, thirstLevel, notes) VALUES (?, ?, ?, ?, ?)`,
		w.Date, w.Time, w.Amount, nullInt(w.ThirstLevel), nullString(w.Notes))
	if err != nil {
		return 0, opErr("add", model.KindWater, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, opErr("add", model.KindWater, err)
	}
	return id, nil
}

func (s *SQLiteStore) GetWater(ctx context.Context, id int64) (model.WaterEntry, bool, error) {
	db, err := s.conn()
	if err != nil {
		return model.WaterEntry{}, false, opErr("get", model.KindWater, err)
	}
	w, err := scanWater(db.QueryRowContext(ctx, `SELECT `+waterColumns+` FROM water WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.WaterEntry{}, false, nil
	}
	if err != nil {
		return model.WaterEntry{}, false, opErr("get", model.KindWater, err)
	}
	return w, true, nil
}

func (s *SQLiteStore) GetWaterByDate(ctx context.Context, date string) ([]model.WaterEntry, error) {
	return s.queryWater(ctx, "list by date",
		`SELECT `+waterColumns+` FROM water WHERE date = ? ORDER BY time DESC, id DESC`, date)
}

func (s *SQLiteStore) GetAllWater(ctx context.Context) ([]model.WaterEntry, error) {
	return s.queryWater(ctx, "list",
		`SELECT `+waterColumns+` FROM water ORDER BY date DESC, time DESC, id DESC`)
}

func (s *SQLiteStore) UpdateWater(ctx context.Context, w model.WaterEntry) error {
	db, err := s.conn()
	if err != nil {
		return opErr("update", model.KindWater, err)
	}
	err = execAffecting(ctx, db,
		`UPDATE water SET date = ?, time = ?, amount = ?, thirstLevel = ?, notes = ? WHERE id = ?`,
		w.Date, w.Time, w.Amount, nullInt(w.ThirstLevel), nullString(w.Notes), w.ID)
	return opErr("update", model.KindWater, err)
}

func (s *SQLiteStore) DeleteWater(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return opErr("delete", model.KindWater, err)
	}
	_, err = db.ExecContext(ctx, `DELETE FROM water WHERE id = ?`, id)
	return opErr("delete", model.KindWater, err)
}

func (s *SQLiteStore) queryWater(ctx context.Context, op, query string, args ...interface{}) ([]model.WaterEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, opErr(op, model.KindWater, err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opErr(op, model.KindWater, err)
	}
	defer rows.Close()

	entries := []model.WaterEntry{}
	for rows.Next() {
		w, err := scanWater(rows)
		if err != nil {
			return nil, opErr(op, model.KindWater, err)
		}
		entries = append(entries, w)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr(op, model.KindWater, err)
	}
	return entries, nil
}

func scanWater(row scanner) (model.WaterEntry, error) {
	var w model.WaterEntry
	var date, tm, notes sql.NullString
	var amount, thirst sql.NullInt64

	if err := row.Scan(&w.ID, &date, &tm, &amount, &thirst, &notes); err != nil {
		return w, err
	}

	w.Date = date.String
	w.Time = tm.String
	w.Amount = int(amount.Int64)
	if thirst.Valid {
		v := int(thirst.Int64)
		w.ThirstLevel = &v
	}
	w.Notes = notes.String
	return w, nil
}
