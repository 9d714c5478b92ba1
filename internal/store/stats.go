package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string `json:"db_path"`
	DBSizeBytes    int64  `json:"db_size_bytes"`
	Meals          int    `json:"meals"`
	MealsWithPhoto int    `json:"meals_with_photo"`
	Water          int    `json:"water"`
	WaterTotalML   int64  `json:"water_total_ml"`
	Weights        int    `json:"weights"`
	FirstDate      string `json:"first_date,omitempty"`
	LastDate       string `json:"last_date,omitempty"`
	HasSettings    bool   `json:"has_settings"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(photoPath) FROM meals`).Scan(&st.Meals, &st.MealsWithPhoto); err != nil {
		return st, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*), IFNULL(SUM(amount), 0) FROM water`).Scan(&st.Water, &st.WaterTotalML); err != nil {
		return st, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weights`).Scan(&st.Weights); err != nil {
		return st, err
	}

	var settingsRows int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&settingsRows)
	st.HasSettings = settingsRows > 0

	db.QueryRowContext(ctx, `
		SELECT IFNULL(MIN(date), ''), IFNULL(MAX(date), '') FROM (
			SELECT date FROM meals UNION ALL SELECT date FROM water UNION ALL SELECT date FROM weights
		)`).Scan(&st.FirstDate, &st.LastDate)

	return st, nil
}
