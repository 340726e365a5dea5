package main

import (
	"github.com/spf13/cobra"
)

var syncPages int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Page top stories into the cache and print them",
	Long: `Refresh the top story list, then append pages until --pages pages are
loaded or the list ends. Prints rank, title, score and id of every cached story.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		globalApp.StartMetrics()
		return globalApp.Sync(cmd.Context(), syncPages, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntVar(&syncPages, "pages", 1, "number of pages to load")
}
