package cli

import (
	"github.com/spf13/cobra"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

func init() {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Run:   runSettingsShow,
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the given flags are changed",
		Run:   runSettingsSet,
	}
	f := set.Flags()
	f.String("theme", "", "light, dark or system")
	f.Bool("water-widget", true, "Show the water widget")
	f.Bool("meal-count-widget", true, "Show the meal count widget")
	f.Bool("weight-widget", true, "Show the weight widget")
	f.Int("height", 0, "Height in cm, 50-250")
	f.Float64("weight", 0, "Reference weight in kg")
	f.Int("keep-photos-months", 0, "Months to keep meal photos")

	settingsCmd.AddCommand(show, set)
	RootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	printJSON(cmd, a.state.Settings())
}

func runSettingsSet(cmd *cobra.Command, args []string) {
	f := cmd.Flags()
	var p model.SettingsPatch
	if f.Changed("theme") {
		v, _ := f.GetString("theme")
		p.Theme = &v
	}
	if f.Changed("water-widget") {
		v, _ := f.GetBool("water-widget")
		p.WaterWidget = &v
	}
	if f.Changed("meal-count-widget") {
		v, _ := f.GetBool("meal-count-widget")
		p.MealCountWidget = &v
	}
	if f.Changed("weight-widget") {
		v, _ := f.GetBool("weight-widget")
		p.WeightWidget = &v
	}
	if f.Changed("height") {
		v, _ := f.GetInt("height")
		p.Height = &v
	}
	if f.Changed("weight") {
		v, _ := f.GetFloat64("weight")
		p.Weight = &v
	}
	if f.Changed("keep-photos-months") {
		v, _ := f.GetInt("keep-photos-months")
		p.KeepPhotosMonths = &v
	}

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	st, err := a.state.UpdateSettings(cmd.Context(), p)
	if err != nil {
		exitErr("update settings", err)
	}
	printJSON(cmd, st)
}
