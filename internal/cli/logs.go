package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func init() {
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the application journal",
		Run:   runLogs,
	}
	logsCmd.Flags().IntP("limit", "l", 0, "Only the last N entries")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the journal",
		Run:   runLogsClear,
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the journal to a timestamped file",
		Run:   runLogsExport,
	}
	export.Flags().String("dir", "", "Target directory (default: data dir)")

	logsCmd.AddCommand(clearCmd, export)
	RootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := logs.Entries()
	if err != nil {
		exitErr("read journal", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	printJSON(cmd, entries)
}

func runLogsClear(cmd *cobra.Command, args []string) {
	if err := logs.Clear(); err != nil {
		exitErr("clear journal", err)
	}
	printJSON(cmd, map[string]bool{"cleared": true})
}

func runLogsExport(cmd *cobra.Command, args []string) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.DataDir
	}

	path, err := logs.Export(dir, time.Now())
	if err != nil {
		exitErr("export journal", err)
	}
	printJSON(cmd, map[string]string{"path": path})
}
