package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database, photo directory and default settings",
		Run:   runInit,
	}

	RootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd)
	if err != nil {
		exitErr("initialize", err)
	}
	defer a.Close()

	printJSON(cmd, map[string]any{
		"data_dir": cfg.DataDir,
		"db":       cfg.DB,
		"settings": a.state.Settings(),
	})
}
