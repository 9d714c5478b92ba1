package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
)

func init() {
	weightCmd := &cobra.Command{
		Use:   "weight",
		Short: "Record and browse body weight",
	}

	add := &cobra.Command{
		Use:   "add <kg>",
		Short: "Record a weight measurement",
		Args:  cobra.ExactArgs(1),
		Run:   runWeightAdd,
	}
	add.Flags().String("date", "", "Date YYYY-MM-DD (default: today)")

	update := &cobra.Command{
		Use:   "update <id> [kg]",
		Short: "Change a weight measurement",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runWeightUpdate,
	}
	update.Flags().String("date", "", "New date YYYY-MM-DD")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a weight measurement",
		Args:  cobra.ExactArgs(1),
		Run:   runWeightRm,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List weight measurements, most recent first",
		Run:   runWeightList,
	}
	list.Flags().String("date", "", "Only measurements on this date (YYYY-MM-DD)")

	weightCmd.AddCommand(add, update, rm, list)
	RootCmd.AddCommand(weightCmd)
}

func parseKg(s string) float64 {
	kg, err := strconv.ParseFloat(s, 64)
	if err != nil {
		exitErr("parse weight", fmt.Errorf("invalid weight %q", s))
	}
	return kg
}

func runWeightAdd(cmd *cobra.Command, args []string) {
	w := model.WeightMetric{Date: time.Now().Format("2006-01-02"), Weight: parseKg(args[0])}
	if cmd.Flags().Changed("date") {
		w.Date, _ = cmd.Flags().GetString("date")
	}

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	saved, err := a.state.AddWeight(cmd.Context(), w)
	if err != nil {
		exitErr("add weight", err)
	}
	printJSON(cmd, saved)
}

func runWeightUpdate(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	w, ok, err := a.db.GetWeight(cmd.Context(), id)
	if err != nil {
		exitErr("get weight", err)
	}
	if !ok {
		exitErr("update weight", fmt.Errorf("%w: id %d", store.ErrNotFound, id))
	}
	if len(args) > 1 {
		w.Weight = parseKg(args[1])
	}
	if cmd.Flags().Changed("date") {
		w.Date, _ = cmd.Flags().GetString("date")
	}

	if err := a.state.UpdateWeight(cmd.Context(), w); err != nil {
		exitErr("update weight", err)
	}
	printJSON(cmd, w)
}

func runWeightRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	if err := a.state.DeleteWeight(cmd.Context(), id); err != nil {
		exitErr("delete weight", err)
	}
	printJSON(cmd, map[string]any{"deleted": id})
}

func runWeightList(cmd *cobra.Command, args []string) {
	date, _ := cmd.Flags().GetString("date")

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	weights := a.state.Snapshot().Weights
	if date != "" {
		if weights, err = a.db.GetWeightsByDate(cmd.Context(), date); err != nil {
			exitErr("list weights", err)
		}
	}
	printJSON(cmd, weights)
}
