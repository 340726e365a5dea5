package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abelbrown/hnreader/internal/app"
	"github.com/abelbrown/hnreader/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the cache schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.OpenStore(globalConfig)
		if err != nil {
			return err
		}
		if err := st.Close(); err != nil {
			return err
		}
		path, _ := config.ExpandPath(globalConfig.Store.Path)
		fmt.Fprintf(cmd.OutOrStdout(), "cache schema up to date: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
