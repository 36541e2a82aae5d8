package status_test

import (
	"testing"

	"codeberg.org/mutker/wattwatch/internal/meter"
	"codeberg.org/mutker/wattwatch/internal/status"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		metric meter.Metric
		value  meter.Value
		want   status.Severity
	}{
		{meter.Voltage, meter.Of(230), status.Normal},
		{meter.Voltage, meter.Of(210), status.Normal},
		{meter.Voltage, meter.Of(240), status.Normal},
		{meter.Voltage, meter.Of(245), status.Warning},
		{meter.Voltage, meter.Of(205), status.Warning},
		{meter.Voltage, meter.Of(250), status.Warning},
		{meter.Voltage, meter.Of(260), status.Critical},
		{meter.Voltage, meter.Of(190), status.Critical},
		{meter.Frequency, meter.Of(50), status.Normal},
		{meter.Frequency, meter.Of(49.2), status.Warning},
		{meter.Frequency, meter.Of(48.5), status.Critical},
		{meter.Voltage, meter.Unavailable(), status.None},
		{meter.Power, meter.Of(5000), status.None},
		{meter.PowerFactor, meter.Of(0.1), status.None},
	}
	for _, tt := range tests {
		t.Run(string(tt.metric)+"/"+tt.value.Format(2), func(t *testing.T) {
			assert.Equal(t, tt.want, status.Classify(tt.metric, tt.value))
		})
	}
}

func TestClassifyReading(t *testing.T) {
	got := status.NewClassifier(status.DefaultTable()).ClassifyReading(meter.Reading{
		Voltage:   meter.Of(252),
		Frequency: meter.Of(50.2),
		Power:     meter.Of(100),
	})

	assert.Equal(t, map[meter.Metric]status.Severity{
		meter.Voltage:   status.Critical,
		meter.Frequency: status.Normal,
	}, got)
}

func TestCustomTable(t *testing.T) {
	c := status.NewClassifier(status.Table{
		meter.PowerFactor: {Normal: status.Range{Min: 0.9, Max: 1}, Warning: status.Range{Min: 0.8, Max: 1}},
	})

	assert.Equal(t, status.Warning, c.Classify(meter.PowerFactor, meter.Of(0.85)))
	assert.Equal(t, status.None, c.Classify(meter.Voltage, meter.Of(300)))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "none", status.None.String())
	assert.Equal(t, "critical", status.Critical.String())
}
