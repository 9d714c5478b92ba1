package appstate

import (
	"context"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

// DefaultKeepPhotosMonths applies when neither the caller nor settings choose a retention.
const DefaultKeepPhotosMonths = 3

// CleanupOldPhotos deletes the photos of meals dated before now minus
// keepMonths and clears their photo paths. keepMonths <= 0 uses the
// settings value, falling back to DefaultKeepPhotosMonths. It returns how
// many photos were removed.
func (s *Store) CleanupOldPhotos(ctx context.Context, keepMonths int) (int, error) {
	if keepMonths <= 0 {
		keepMonths = DefaultKeepPhotosMonths
		if st := s.Settings(); st.KeepPhotosMonths != nil && *st.KeepPhotosMonths > 0 {
			keepMonths = *st.KeepPhotosMonths
		}
	}
	cutoff := s.now().AddDate(0, -keepMonths, 0).Format("2006-01-02")

	s.mealMu.Lock()
	removed, err := s.cleanupLocked(ctx, cutoff)
	s.mealMu.Unlock()

	if removed > 0 {
		s.log.Info("old photos removed", "count", removed, "before", cutoff)
		s.emit()
	}
	if err != nil {
		return removed, s.fail("cleanup", model.KindMeal, err, "before", cutoff)
	}
	return removed, nil
}

func (s *Store) cleanupLocked(ctx context.Context, cutoff string) (int, error) {
	meals, err := s.gw.GetAllMeals(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, m := range meals {
		if m.PhotoPath == "" || m.Date >= cutoff {
			continue
		}
		if err := s.photos.Delete(ctx, m.PhotoPath); err != nil {
			return removed, err
		}
		m.PhotoPath = ""
		if err := s.gw.UpdateMeal(ctx, m); err != nil {
			return removed, err
		}
		s.mu.Lock()
		s.data.Meals = placeSorted(s.data.Meals, m, mealID, mealNewer)
		s.mu.Unlock()
		removed++
	}
	return removed, nil
}
