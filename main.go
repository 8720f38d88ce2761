package main

import (
	"fmt"
	"os"

	"fjacquet/statement-import/cmd/categorize"
	"fjacquet/statement-import/cmd/detect"
	"fjacquet/statement-import/cmd/feed"
	"fjacquet/statement-import/cmd/importcmd"
	"fjacquet/statement-import/cmd/recategorize"
	"fjacquet/statement-import/cmd/root"
	"fjacquet/statement-import/internal/config"
	"fjacquet/statement-import/internal/logging"
)

func init() {
	// .env first, silently: nothing may log before the level is known
	config.LoadEnv()

	logging.SetAllLogLevels(logging.ParseLevel(os.Getenv("STMT_LOG_LEVEL")))

	root.Init()

	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(feed.Cmd)
	root.Cmd.AddCommand(detect.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(recategorize.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
