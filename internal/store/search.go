package store

import (
	"context"
	"strings"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

// SearchParams holds parameters for searching meals.
type SearchParams struct {
	Query string
	From  string // inclusive YYYY-MM-DD, optional
	To    string // inclusive YYYY-MM-DD, optional
	Limit int
}

// SearchMeals finds meals whose description, notes or meal type contain the query.
func (s *SQLiteStore) SearchMeals(ctx context.Context, p SearchParams) ([]model.MealEntry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	like := "%" + strings.TrimSpace(p.Query) + "%"
	where := []string{"(description LIKE ? OR notes LIKE ? OR mealType LIKE ?)"}
	args := []interface{}{like, like, like}

	if p.From != "" {
		where = append(where, "date >= ?")
		args = append(args, p.From)
	}
	if p.To != "" {
		where = append(where, "date <= ?")
		args = append(args, p.To)
	}
	args = append(args, limit)

	return s.queryMeals(ctx, "search",
		`SELECT `+mealColumns+` FROM meals WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY date DESC, time DESC, id DESC LIMIT ?`, args...)
}
