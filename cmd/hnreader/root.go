package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abelbrown/hnreader/internal/app"
	"github.com/abelbrown/hnreader/internal/config"
	"github.com/abelbrown/hnreader/internal/logging"
)

var (
	globalConfig *config.Config
	globalApp    *app.App
)

// Global flags. Set flags override the config file and the environment.
var (
	configPath  string
	dbPath      string
	pageSize    int
	metricsAddr string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "hnreader",
	Short: "Terminal reader for Hacker News",
	Long: `hnreader pages Hacker News top stories and their comments into a local
SQLite cache as you scroll, and reads everything back from that cache.

Run without a subcommand for the interactive reader.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		globalConfig = cfg

		if err := setupLogging(cmd, cfg); err != nil {
			return err
		}

		// migrate opens the cache on its own; init never touches it.
		if cmd.Name() == "migrate" || cmd.Name() == "init" {
			return nil
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		globalApp = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalApp != nil {
			if err := globalApp.Close(); err != nil {
				logging.Warn("Close failed", "error", err)
			}
			globalApp = nil
		}
		logging.Close()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		globalApp.StartMetrics()
		return globalApp.RunTUI(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/hnreader/config.yaml)")
	flags.StringVar(&dbPath, "db", "", "cache database path")
	flags.IntVar(&pageSize, "page-size", 0, "stories or comments per page")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Store.Path = dbPath
	}
	if flags.Changed("page-size") {
		cfg.Paging.PageSize = pageSize
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogging sends logs to the log file for the TUI, which owns the
// terminal, and to stderr for everything else.
func setupLogging(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.HasParent() {
		return logging.Setup(os.Stderr, cfg.Log.Level)
	}
	path, err := config.ExpandPath(cfg.Log.Path)
	if err != nil {
		return err
	}
	return logging.Init(path, cfg.Log.Level)
}
