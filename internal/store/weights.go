package store

import (
	"context"
	"database/sql"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

func (s *SQLiteStore) AddWeight(ctx context.Context, w model.WeightMetric) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, opErr("add", model.KindWeight, err)
	}
	res, err := db.ExecContext(ctx, `INSERT INTO weights (date, weight) VALUES (?, ?)`, w.Date, w.Weight)
	if err != nil {
		return 0, opErr("add", model.KindWeight, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, opErr("add", model.KindWeight, err)
	}
	return id, nil
}

func (s *SQLiteStore) GetWeight(ctx context.Context, id int64) (model.WeightMetric, bool, error) {
	db, err := s.conn()
	if err != nil {
		return model.WeightMetric{}, false, opErr("get", model.KindWeight, err)
	}
	w, err := scanWeight(db.QueryRowContext(ctx, `SELECT id, date, weight FROM weights WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.WeightMetric{}, false, nil
	}
	if err != nil {
		return model.WeightMetric{}, false, opErr("get", model.KindWeight, err)
	}
	return w, true, nil
}

func (s *SQLiteStore) GetWeightsByDate(ctx context.Context, date string) ([]model.WeightMetric, error) {
	return s.queryWeights(ctx, "list by date",
		`SELECT id, date, weight FROM weights WHERE date = ? ORDER BY id DESC`, date)
}

func (s *SQLiteStore) GetAllWeights(ctx context.Context) ([]model.WeightMetric, error) {
	return s.queryWeights(ctx, "list",
		`SELECT id, date, weight FROM weights ORDER BY date DESC, id DESC`)
}

func (s *SQLiteStore) UpdateWeight(ctx context.Context, w model.WeightMetric) error {
	db, err := s.conn()
	if err != nil {
		return opErr("update", model.KindWeight, err)
	}
	err = execAffecting(ctx, db, `UPDATE weights SET date = ?, weight = ? WHERE id = ?`, w.Date, w.Weight, w.ID)
	return opErr("update", model.KindWeight, err)
}

func (s *SQLiteStore) DeleteWeight(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return opErr("delete", model.KindWeight, err)
	}
	_, err = db.ExecContext(ctx, `DELETE FROM weights WHERE id = ?`, id)
	return opErr("delete", model.KindWeight, err)
}

func (s *SQLiteStore) queryWeights(ctx context.Context, op, query string, args ...interface{}) ([]model.WeightMetric, error) {
	db, err := s.conn()
	if err != nil {
		return nil, opErr(op, model.KindWeight, err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opErr(op, model.KindWeight, err)
	}
	defer rows.Close()

	weights := []model.WeightMetric{}
	for rows.Next() {
		w, err := scanWeight(rows)
		if err != nil {
			return nil, opErr(op, model.KindWeight, err)
		}
		weights = append(weights, w)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr(op, model.KindWeight, err)
	}
	return weights, nil
}

func scanWeight(row scanner) (model.WeightMetric, error) {
	var w model.WeightMetric
	var date sql.NullString
	var weight sql.NullFloat64
	if err := row.Scan(&w.ID, &date, &weight); err != nil {
		return w, err
	}
	w.Date = date.String
	w.Weight = weight.Float64
	return w, nil
}
