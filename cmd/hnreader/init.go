package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abelbrown/hnreader/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Long: `init writes the configuration hnreader is running with (defaults,
environment and flags) to the config file so it can be edited.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.ConfigPath(); err != nil {
				return err
			}
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
		if err := globalConfig.Save(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config written: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
