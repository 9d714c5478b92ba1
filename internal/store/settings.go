package store

import (
	"context"
	"database/sql"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

func (s *SQLiteStore) GetSettings(ctx context.Context) (model.Settings, bool, error) {
	db, err := s.conn()
	if err != nil {
		return model.Settings{}, false, opErr("get", model.KindSettings, err)
	}

	var st model.Settings
	var theme sql.NullString
	var water, mealCount, weightW, height, keep sql.NullInt64
	var weight sql.NullFloat64
	err = db.QueryRowContext(ctx,
		`SELECT theme, waterWidget, mealCountWidget, weightWidget, height, weight, keepPhotosMonths
		 FROM settings ORDER BY id LIMIT 1`).
		Scan(&theme, &water, &mealCount, &weightW, &height, &weight, &keep)
	if err == sql.ErrNoRows {
		return model.Settings{}, false, nil
	}
	if err != nil {
		return model.Settings{}, false, opErr("get", model.KindSettings, err)
	}

	st.Theme = theme.String
	st.WaterWidget = water.Int64 != 0
	st.MealCountWidget = mealCount.Int64 != 0
	st.WeightWidget = weightW.Int64 != 0
	st.Height = int(height.Int64)
	st.Weight = weight.Float64
	if keep.Valid {
		v := int(keep.Int64)
		st.KeepPhotosMonths = &v
	}
	return st, true, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, st model.Settings) error {
	db, err := s.conn()
	if err != nil {
		return opErr("save", model.KindSettings, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO settings (id, theme, waterWidget, mealCountWidget, weightWidget, height, weight, keepPhotosMonths)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			theme = excluded.theme,
			waterWidget = excluded.waterWidget,
			mealCountWidget = excluded.mealCountWidget,
			weightWidget = excluded.weightWidget,
			height = excluded.height,
			weight = excluded.weight,
			keepPhotosMonths = excluded.keepPhotosMonths`,
		SettingsRowID, st.Theme, boolToInt(st.WaterWidget), boolToInt(st.MealCountWidget),
		boolToInt(st.WeightWidget), st.Height, st.Weight, nullInt(st.KeepPhotosMonths))
	return opErr("save", model.KindSettings, err)
}
