package main

import (
	"fmt"
	"os"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

// app carries the options loaded before any subcommand runs.
type app struct {
	opts *config.Options
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "wattwatch",
		Short: "Smart energy meter poller",
		Long: `wattwatch polls a smart energy meter API, integrates energy usage,
flags out-of-range voltage and frequency, and exports CSV and HTML reports.

Settings saved with 'wattwatch config set' (apiUrl, deviceId,
refreshInterval, darkMode) take precedence over the matching flags,
environment and config file. Run 'wattwatch config reset' to drop them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if err := logger.Init(opts.LogLevel, logger.IsService()); err != nil {
				return err
			}
			logger.Debug().Msg("Config loaded")
			a.opts = opts
			return nil
		},
	}

	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newRunCmd(a),
		newFetchCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
