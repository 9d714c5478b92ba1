package cli

import (
	"github.com/spf13/cobra"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/backup"
)

func init() {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list, restore and delete backups",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Write every meal, water entry, weight and the settings to a new backup",
		Run:   runBackupCreate,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Run:   runBackupList,
	}

	restore := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore settings from a backup",
		Long:  "Restore settings from a backup. With --records the meal, water and weight tables are replaced too.",
		Args:  cobra.ExactArgs(1),
		Run:   runBackupRestore,
	}
	restore.Flags().Bool("records", false, "Also replace meals, water and weights")

	rm := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		Run:   runBackupRm,
	}

	backupCmd.AddCommand(create, list, restore, rm)
	RootCmd.AddCommand(backupCmd)
}

func runBackupCreate(cmd *cobra.Command, args []string) {
	e, db := openBackups()
	defer db.Close()

	name, err := e.Create(cmd.Context())
	if err != nil {
		exitErr("create backup", err)
	}
	printJSON(cmd, map[string]string{"name": name, "dir": e.Dir()})
}

func runBackupList(cmd *cobra.Command, args []string) {
	e, db := openBackups()
	defer db.Close()

	list, err := e.List(cmd.Context())
	if err != nil {
		exitErr("list backups", err)
	}
	printJSON(cmd, list)
}

func runBackupRestore(cmd *cobra.Command, args []string) {
	records, _ := cmd.Flags().GetBool("records")

	e, db := openBackups()
	defer db.Close()

	if err := e.Restore(cmd.Context(), args[0], backup.RestoreOptions{Records: records}); err != nil {
		exitErr("restore backup", err)
	}
	printJSON(cmd, map[string]any{"restored": args[0], "records": records})
}

func runBackupRm(cmd *cobra.Command, args []string) {
	e, db := openBackups()
	defer db.Close()

	if err := e.Delete(cmd.Context(), args[0]); err != nil {
		exitErr("delete backup", err)
	}
	printJSON(cmd, map[string]string{"deleted": args[0]})
}
