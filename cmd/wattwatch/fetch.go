package main

import (
	"fmt"
	"io"
	"sort"

	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/meter"
	"codeberg.org/mutker/wattwatch/internal/retry"
	"codeberg.org/mutker/wattwatch/internal/status"
	"codeberg.org/mutker/wattwatch/internal/telemetry"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var noRetry bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and print the latest reading once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.Get()
			ctx := cmd.Context()

			store, st, err := openStore(ctx, a.opts, log)
			if err != nil {
				return err
			}
			defer closeSettings(st, log)

			client := telemetry.NewClient(store, telemetry.WithLogger(log))
			cfg := store.Get()

			var r meter.Reading
			if noRetry {
				r, err = client.FetchLatest(ctx, cfg.DeviceID)
			} else {
				r, err = retry.New(client, retry.WithLogger(log)).FetchWithRetry(ctx, cfg.DeviceID)
			}
			if err != nil {
				return err
			}

			printReading(cmd.OutOrStdout(), cfg.DeviceID, r)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRetry, "no-retry", false, "Fail on the first error")

	return cmd
}

func printReading(w io.Writer, deviceID string, r meter.Reading) {
	severities := status.NewClassifier(status.DefaultTable()).ClassifyReading(r)

	fmt.Fprintf(w, "Device:    %s\n", deviceID)
	fmt.Fprintf(w, "Timestamp: %s\n", r.Timestamp.Format("2006-01-02 15:04:05 MST"))
	for _, m := range meter.Metrics() {
		line := fmt.Sprintf("%-13s %s %s", string(m)+":", r.Value(m).Format(m.Decimals()), m.Unit())
		if sev, ok := severities[m]; ok && sev != status.None {
			line += " [" + sev.String() + "]"
		}
		fmt.Fprintln(w, line)
	}

	keys := make([]string, 0, len(severities))
	for m, sev := range severities {
		if sev == status.Critical {
			keys = append(keys, string(m))
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "WARNING: %s outside safe range\n", k)
	}
}
