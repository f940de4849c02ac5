package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:           "taskdeck",
	Short:         "Taskdeck connects and syncs third-party work tools behind one API.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, syncCmd, providersCmd)
}
