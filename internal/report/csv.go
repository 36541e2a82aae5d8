package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/energy"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/meter"
)

var csvHeader = []string{
	"Timestamp",
	"Voltage (V)",
	"Current (A)",
	"Power (W)",
	"Frequency (Hz)",
	"Power Factor",
	"Energy (kWh)",
}

// WriteCSV writes a header and one row per reading. The energy column is the
// increment of that reading over the configured poll interval, rounded to
// three decimals: at a 1 s interval any load below 1.8 kW prints as 0.000.
// Summarize carries the unrounded cumulative total.
func WriteCSV(w io.Writer, readings []meter.Reading, cfg config.Config) error {
	errFactory := errors.New()
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return errFactory.Wrap(ErrRender, err)
	}

	for _, r := range readings {
		row := []string{r.Timestamp.Format(time.RFC3339)}
		for _, m := range meter.Metrics() {
			row = append(row, r.Value(m).Format(m.Decimals()))
		}
		row = append(row, energyCell(r, cfg.PollIntervalSeconds))

		if err := cw.Write(row); err != nil {
			return errFactory.Wrap(ErrRender, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errFactory.Wrap(ErrRender, err)
	}

	return nil
}

// CSV renders WriteCSV output to a string.
func CSV(readings []meter.Reading, cfg config.Config) (string, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, readings, cfg); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func energyCell(r meter.Reading, intervalSeconds int) string {
	if !r.Power.Available() {
		return "N/A"
	}

	return strconv.FormatFloat(energy.Increment(r.Power, intervalSeconds), 'f', 3, 64)
}
