package report

import (
	"fmt"
	"time"

	"codeberg.org/mutker/wattwatch/internal/meter"
)

const shareTimeLayout = "2006-01-02 15:04:05"

// ShareText renders a reading as a short plain-text message.
func ShareText(r meter.Reading, cumulativeKWh float64, at time.Time) string {
	return fmt.Sprintf(
		"Smart Energy Meter Reading:\nTime: %s\nVoltage: %s V\nCurrent: %s A\nPower: %s W\nFrequency: %s Hz\nPF: %s\nEnergy: %.3f kWh",
		at.Format(shareTimeLayout),
		r.Voltage.Format(meter.Voltage.Decimals()),
		r.Current.Format(meter.Current.Decimals()),
		r.Power.Format(meter.Power.Decimals()),
		r.Frequency.Format(meter.Frequency.Decimals()),
		r.PowerFactor.Format(meter.PowerFactor.Decimals()),
		cumulativeKWh,
	)
}
