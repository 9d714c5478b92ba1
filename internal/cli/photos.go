package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
)

func init() {
	photosCmd := &cobra.Command{
		Use:   "photos",
		Short: "Manage meal photos",
	}

	add := &cobra.Command{
		Use:   "add <meal-id> <image-file>",
		Short: "Attach an image to a meal, replacing any previous one",
		Args:  cobra.ExactArgs(2),
		Run:   runPhotosAdd,
	}

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete photos of meals older than the retention period",
		Run:   runPhotosCleanup,
	}
	cleanup.Flags().Int("months", 0, "Keep photos this many months (default: settings, else 3)")

	photosCmd.AddCommand(add, cleanup)
	RootCmd.AddCommand(photosCmd)
}

func runPhotosAdd(cmd *cobra.Command, args []string) {
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
		exitErr("attach photo", fmt.Errorf("%w: id %d", store.ErrNotFound, id))
	}
	if m.PhotoPath, err = savePhoto(cmd, a, args[1]); err != nil {
		exitErr("save photo", err)
	}
	if err := a.state.UpdateMeal(cmd.Context(), m); err != nil {
		a.photos.Delete(cmd.Context(), m.PhotoPath)
		exitErr("attach photo", err)
	}
	printJSON(cmd, map[string]any{"meal": m, "url": a.photos.URL(m.PhotoPath)})
}

func runPhotosCleanup(cmd *cobra.Command, args []string) {
	months, _ := cmd.Flags().GetInt("months")

	a, err := openApp(cmd)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()

	n, err := a.state.CleanupOldPhotos(cmd.Context(), months)
	if err != nil {
		exitErr("cleanup photos", err)
	}
	printJSON(cmd, map[string]int{"removed": n})
}
