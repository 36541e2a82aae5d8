// Package report derives statistics from the reading history and renders
// them as CSV, HTML and plain text. Everything here is a pure function of
// its inputs.
package report

import (
	"time"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/meter"
)

// RecentRows is the number of readings listed in the report table.
const RecentRows = 10

// Stats aggregates one metric. Unavailable values count as 0.
type Stats struct {
	Avg float64
	Min float64
	Max float64
}

// Data is the input of the HTML report.
type Data struct {
	SessionID   string
	DeviceID    string
	GeneratedAt time.Time

	Count    int
	Start    time.Time
	End      time.Time
	Duration time.Duration

	Stats map[meter.Metric]Stats
	Peak  meter.Reading

	CumulativeKWh float64
	CostPerKWh    float64
	EstimatedCost float64

	// Recent holds the newest readings, newest first.
	Recent []meter.Reading
}

// Summarize computes report data over readings, which are ordered oldest first.
func Summarize(readings []meter.Reading, cumulativeKWh float64, cfg config.Config) (Data, error) {
	if len(readings) == 0 {
		return Data{}, errors.New().New(ErrNoData)
	}

	data := Data{
		DeviceID:      cfg.DeviceID,
		Count:         len(readings),
		Start:         readings[0].Timestamp,
		End:           readings[0].Timestamp,
		Stats:         make(map[meter.Metric]Stats, len(meter.Metrics())),
		Peak:          readings[0],
		CumulativeKWh: cumulativeKWh,
		CostPerKWh:    cfg.CostPerKWh,
		EstimatedCost: cumulativeKWh * cfg.CostPerKWh,
	}

	for _, m := range meter.Metrics() {
		first := readings[0].Value(m).Float()
		s := Stats{Min: first, Max: first}
		var sum float64
		for _, r := range readings {
			v := r.Value(m).Float()
			sum += v
			s.Min = min(s.Min, v)
			s.Max = max(s.Max, v)
		}
		s.Avg = sum / float64(len(readings))
		data.Stats[m] = s
	}

	for _, r := range readings {
		if r.Timestamp.Before(data.Start) {
			data.Start = r.Timestamp
		}
		if r.Timestamp.After(data.End) {
			data.End = r.Timestamp
		}
		if r.Power.Float() > data.Peak.Power.Float() {
			data.Peak = r
		}
	}
	data.Duration = data.End.Sub(data.Start)

	n := min(RecentRows, len(readings))
	data.Recent = make([]meter.Reading, 0, n)
	for i := len(readings) - 1; i >= len(readings)-n; i-- {
		data.Recent = append(data.Recent, readings[i])
	}

	return data, nil
}
