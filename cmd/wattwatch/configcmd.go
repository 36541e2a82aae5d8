package main

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [show|set|reset]",
		Short: "Inspect or change the persisted meter settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				log := logger.Get()
				store, st, err := openStore(cmd.Context(), a.opts, log)
				if err != nil {
					return err
				}
				defer closeSettings(st, log)

				printConfig(cmd, store.Get(), a.opts)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Persist a setting (" + strings.Join(config.Keys(), ", ") + ")",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				patch, err := parsePatch(args[0], args[1])
				if err != nil {
					return err
				}

				log := logger.Get()
				store, st, err := openStore(cmd.Context(), a.opts, log)
				if err != nil {
					return err
				}
				defer closeSettings(st, log)

				cfg, err := store.Update(cmd.Context(), patch)
				if err != nil {
					return err
				}

				printConfig(cmd, cfg, a.opts)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Remove persisted settings and restore defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				log := logger.Get()
				store, st, err := openStore(cmd.Context(), a.opts, log)
				if err != nil {
					return err
				}
				defer closeSettings(st, log)

				cfg, err := store.Reset(cmd.Context())
				if err != nil {
					return err
				}

				printConfig(cmd, cfg, a.opts)
				return nil
			},
		},
	)

	return cmd
}

func parsePatch(key, value string) (config.Patch, error) {
	errFactory := errors.New()
	var p config.Patch

	switch key {
	case config.KeyAPIURL:
		p.APIBaseURL = &value
	case config.KeyDeviceID:
		p.DeviceID = &value
	case config.KeyRefreshInterval:
		n, err := strconv.Atoi(value)
		if err != nil {
			return p, errFactory.Wrap(errors.ErrInvalidInterval, err)
		}
		p.PollIntervalSeconds = &n
	case config.KeyDarkMode:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
		p.DarkMode = &b
	default:
		return p, errFactory.WithMessage(errors.ErrInvalidArgument,
			fmt.Sprintf("unknown key %q, expected one of %s", key, strings.Join(config.Keys(), ", ")))
	}

	return p, nil
}

func printConfig(cmd *cobra.Command, cfg config.Config, opts *config.Options) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-16s %s\n", config.KeyAPIURL, cfg.APIBaseURL)
	fmt.Fprintf(w, "%-16s %s\n", config.KeyDeviceID, cfg.DeviceID)
	fmt.Fprintf(w, "%-16s %d\n", config.KeyRefreshInterval, cfg.PollIntervalSeconds)
	fmt.Fprintf(w, "%-16s %t\n", config.KeyDarkMode, cfg.DarkMode)
	fmt.Fprintf(w, "%-16s %.2f\n", "costPerKWh", cfg.CostPerKWh)
	fmt.Fprintf(w, "%-16s %s\n", "settingsDB", opts.SettingsDB)
}
