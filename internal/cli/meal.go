package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
)

func init() {
	mealCmd := &cobra.Command{
		Use:   "meal",
		Short: "Record and browse meals",
	}

	add := &cobra.Command{
		Use:   "add [description]",
		Short: "Record a meal",
		Run:   runMealAdd,
	}
	mealFlags(add.Flags())

	update := &cobra.Command{
		Use:   "update <id> [description]",
		Short: "Change a recorded meal; only the given flags are changed",
		Args:  cobra.MinimumNArgs(1),
		Run:   runMealUpdate,
	}
	mealFlags(update.Flags())
	update.Flags().Bool("clear-photo", false, "Remove the attached photo")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a meal and its photo",
		Args:  cobra.ExactArgs(1),
		Run:   runMealRm,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List meals, most recent first",
		Run:   runMealList,
	}
	list.Flags().String("date", "", "Only meals on this date (YYYY-MM-DD)")

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Find meals by description, notes or meal type",
		Args:  cobra.MinimumNArgs(1),
		Run:   runMealSearch,
	}
	search.Flags().String("from", "", "Earliest date (YYYY-MM-DD)")
	search.Flags().String("to", "", "Latest date (YYYY-MM-DD)")
	search.Flags().IntP("limit", "l", 20, "Max results")

	mealCmd.AddCommand(add, update, rm, list, search)
	RootCmd.AddCommand(mealCmd)
}

func mealFlags(f *pflag.FlagSet) {
	f.String("date", "", "Date YYYY-MM-DD (default: today)")
	f.String("time", "", "Time HH:MM (default: now)")
	f.StringP("type", "t", "", "Meal type, e.g. breakfast, lunch, dinner, snack")
	f.Int("hunger", 0, "Hunger before eating, 0-10")
	f.Int("fullness", 0, "Fullness after eating, 0-10")
	f.String("before", "", "Emotion before: very_bad, bad, neutral, good, very_good")
	f.String("after", "", "Emotion after: very_bad, bad, neutral, good, very_good")
	f.String("notes", "", "Free text notes")
	f.String("photo", "", "Image file to attach")
}

// applyMealFlags copies every changed flag onto m. The photo flag returns the
// file to attach, if any.
func applyMealFlags(f *pflag.FlagSet, m *model.MealEntry) (photoFile string) {
	if f.Changed("date") {
		m.Date, _ = f.GetString("date")
	}
	if f.Changed("time") {
		m.Time, _ = f.GetString("time")
	}
	if f.Changed("type") {
		m.MealType, _ = f.GetString("type")
	}
	if f.Changed("hunger") {
		m.HungerLevel, _ = f.GetInt("hunger")
	}
	if f.Changed("fullness") {
		m.FullnessLevel, _ = f.GetInt("fullness")
	}
	if f.Changed("before") {
		m.EmotionBefore, _ = f.GetString("before")
	}
	if f.Changed("after") {
		m.EmotionAfter, _ = f.GetString("after")
	}
	if f.Changed("notes") {
		m.Notes, _ = f.GetString("notes")
	}
	photoFile, _ = f.GetString("photo")
	return photoFile
}

func runMealAdd(cmd *cobra.Command, args []string) {
	now := time.Now()
	m := model.MealEntry{
		Date:        now.Format("2006-01-02"),
		Time:        now.Format("15:04"),
		Description: strings.TrimSpace(strings.Join(args, " ")),
	}
	photoFile := applyMealFlags(cmd.Flags(), &m)

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	if photoFile != "" {
		if m.PhotoPath, err = savePhoto(cmd, a, photoFile); err != nil {
			exitErr("save photo", err)
		}
	}

	saved, err := a.state.AddMeal(cmd.Context(), m)
	if err != nil {
		if m.PhotoPath != "" {
			a.photos.Delete(cmd.Context(), m.PhotoPath)
		}
		exitErr("add meal", err)
	}
	printJSON(cmd, saved)
}

func runMealUpdate(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	m, ok, err := a.db.GetMeal(cmd.Context(), id)
	if err != nil {
		exitErr("get meal", err)
	}
	if !ok {
		exitErr("update meal", fmt.Errorf("%w: id %d", store.ErrNotFound, id))
	}
	if len(args) > 1 {
		m.Description = strings.TrimSpace(strings.Join(args[1:], " "))
	}
	photoFile := applyMealFlags(cmd.Flags(), &m)
	if clearPhoto, _ := cmd.Flags().GetBool("clear-photo"); clearPhoto {
		m.PhotoPath = ""
	}
	if m, err = updateMeal(cmd, a, m, photoFile); err != nil {
		exitErr("update meal", err)
	}
	printJSON(cmd, m)
}

// updateMeal attaches photoFile, if any, and saves m. A photo stored for a
// failed update is removed again.
func updateMeal(cmd *cobra.Command, a *app, m model.MealEntry, photoFile string) (model.MealEntry, error) {
	if photoFile != "" {
		rel, err := savePhoto(cmd, a, photoFile)
		if err != nil {
			return m, fmt.Errorf("save photo: %w", err)
		}
		m.PhotoPath = rel
	}
	if err := a.state.UpdateMeal(cmd.Context(), m); err != nil {
		if photoFile != "" {
			a.photos.Delete(cmd.Context(), m.PhotoPath)
		}
		return m, err
	}
	return m, nil
}

func runMealRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	if err := a.state.DeleteMeal(cmd.Context(), id); err != nil {
		exitErr("delete meal", err)
	}
	printJSON(cmd, map[string]any{"deleted": id})
}

func runMealList(cmd *cobra.Command, args []string) {
	date, _ := cmd.Flags().GetString("date")

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	meals := a.state.Snapshot().Meals
	if date != "" {
		if meals, err = a.db.GetMealsByDate(cmd.Context(), date); err != nil {
			exitErr("list meals", err)
		}
	}
	printJSON(cmd, meals)
}

func runMealSearch(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	limit, _ := cmd.Flags().GetInt("limit")

	db := store.NewSQLiteStore(cfg.DB)
	defer db.Close()

	meals, err := db.SearchMeals(cmd.Context(), store.SearchParams{
		Query: strings.Join(args, " "),
		From:  from,
		To:    to,
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}
	printJSON(cmd, meals)
}

func savePhoto(cmd *cobra.Command, a *app, file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return a.photos.Save(cmd.Context(), data, "")
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		exitErr("parse id", fmt.Errorf("invalid id %q", s))
	}
	return id
}
