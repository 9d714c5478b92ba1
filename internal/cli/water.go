package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
)

func init() {
	waterCmd := &cobra.Command{
		Use:   "water",
		Short: "Record and browse water intake",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a drink of water",
		Run:   runWaterAdd,
	}
	waterFlags(add.Flags())

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a water entry; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
		Run:   runWaterUpdate,
	}
	waterFlags(update.Flags())

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a water entry",
		Args:  cobra.ExactArgs(1),
		Run:   runWaterRm,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List water entries, most recent first",
		Run:   runWaterList,
	}
	list.Flags().String("date", "", "Only entries on this date (YYYY-MM-DD)")

	waterCmd.AddCommand(add, update, rm, list)
	RootCmd.AddCommand(waterCmd)
}

func waterFlags(f *pflag.FlagSet) {
	f.String("date", "", "Date YYYY-MM-DD (default: today)")
	f.String("time", "", "Time HH:MM (default: now)")
	f.IntP("amount", "a", 0, "Amount in ml, 1-3000")
	f.Int("thirst", 0, "Thirst level, 0-10")
	f.String("notes", "", "Free text notes")
}

func applyWaterFlags(f *pflag.FlagSet, w *model.WaterEntry) {
	if f.Changed("date") {
		w.Date, _ = f.GetString("date")
	}
	if f.Changed("time") {
		w.Time, _ = f.GetString("time")
	}
	if f.Changed("amount") {
		w.Amount, _ = f.GetInt("amount")
	}
	if f.Changed("thirst") {
		t, _ := f.GetInt("thirst")
		w.ThirstLevel = &t
	}
	if f.Changed("notes") {
		w.Notes, _ = f.GetString("notes")
	}
}

func runWaterAdd(cmd *cobra.Command, args []string) {
	now := time.Now()
	w := model.WaterEntry{Date: now.Format("2006-01-02"), Time: now.Format("15:04")}
	applyWaterFlags(cmd.Flags(), &w)

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	saved, err := a.state.AddWater(cmd.Context(), w)
	if err != nil {
		exitErr("add water", err)
	}
	printJSON(cmd, saved)
}

func runWaterUpdate(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	w, ok, err := a.db.GetWater(cmd.Context(), id)
	if err != nil {
		exitErr("get water", err)
	}
	if !ok {
		exitErr("update water", fmt.Errorf("%w: id %d", store.ErrNotFound, id))
	}
	applyWaterFlags(cmd.Flags(), &w)

	if err := a.state.UpdateWater(cmd.Context(), w); err != nil {
		exitErr("update water", err)
	}
	printJSON(cmd, w)
}

func runWaterRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	if err := a.state.DeleteWater(cmd.Context(), id); err != nil {
		exitErr("delete water", err)
	}
	printJSON(cmd, map[string]any{"deleted": id})
}

func runWaterList(cmd *cobra.Command, args []string) {
	date, _ := cmd.Flags().GetString("date")

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	water := a.state.Snapshot().Water
	if date != "" {
		if water, err = a.db.GetWaterByDate(cmd.Context(), date); err != nil {
			exitErr("list water", err)
		}
	}
	printJSON(cmd, water)
}
