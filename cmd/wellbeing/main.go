package main

import (
	"os"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
