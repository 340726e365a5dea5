package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var commentPages int

var commentsCmd = &cobra.Command{
	Use:   "comments <story-id>",
	Short: "Page a cached story's comments and print them",
	Long: `Load the direct comments of a story that is already in the cache (run
sync first) and print them as plain text, in the order Hacker News lists them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid story id %q", args[0])
		}
		globalApp.StartMetrics()
		return globalApp.Comments(cmd.Context(), id, commentPages, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(commentsCmd)
	commentsCmd.Flags().IntVar(&commentPages, "pages", 1, "number of pages to load")
}
