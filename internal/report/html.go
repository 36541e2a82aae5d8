package report

import (
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/meter"
)

const reportTimeLayout = "2006-01-02 15:04:05 MST"

type statRow struct {
	Label    string
	Unit     string
	Decimals int
	Stats    Stats
}

type htmlView struct {
	Data
	Dark bool
	Rows []statRow
}

var funcs = template.FuncMap{
	"value": func(v meter.Value, m meter.Metric) string {
		return v.Format(m.Decimals())
	},
	"fixed": func(f float64, decimals int) string {
		return strconv.FormatFloat(f, 'f', decimals, 64)
	},
	"when": func(t time.Time) string {
		if t.IsZero() {
			return "N/A"
		}
		return t.Format(reportTimeLayout)
	},
	"span": func(d time.Duration) string {
		return d.Round(time.Second).String()
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Energy Report{{with .DeviceID}} - {{.}}{{end}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; {{if .Dark}}background: #121212; color: #e0e0e0;{{else}}background: #ffffff; color: #212121;{{end}} }
h1, h2 { font-weight: 600; }
table { border-collapse: collapse; margin-bottom: 1.5rem; min-width: 24rem; }
th, td { padding: 0.4rem 0.8rem; text-align: right; border-bottom: 1px solid {{if .Dark}}#333333{{else}}#dddddd{{end}}; }
th:first-child, td:first-child { text-align: left; }
.cards { display: flex; gap: 1rem; flex-wrap: wrap; margin-bottom: 1.5rem; }
.card { padding: 1rem; border-radius: 8px; {{if .Dark}}background: #1e1e1e;{{else}}background: #f5f5f5;{{end}} }
.card strong { display: block; font-size: 1.4rem; }
footer { font-size: 0.8rem; opacity: 0.7; }
</style>
</head>
<body>
<h1>Smart Energy Meter Report</h1>
<p>Device {{.DeviceID}}{{if not .GeneratedAt.IsZero}}, generated {{when .GeneratedAt}}{{end}}</p>

<h2>Summary</h2>
<div class="cards">
<div class="card"><span>Readings</span><strong>{{.Count}}</strong></div>
<div class="card"><span>Total energy</span><strong>{{fixed .CumulativeKWh 3}} kWh</strong></div>
<div class="card"><span>Estimated cost</span><strong>{{fixed .EstimatedCost 2}}</strong><span>at {{fixed .CostPerKWh 2}} per kWh</span></div>
</div>

<h2>Averages</h2>
<table>
<tr><th>Metric</th><th>Average</th><th>Minimum</th><th>Maximum</th></tr>
{{range .Rows}}<tr><td>{{.Label}}{{with .Unit}} ({{.}}){{end}}</td><td>{{fixed .Stats.Avg .Decimals}}</td><td>{{fixed .Stats.Min .Decimals}}</td><td>{{fixed .Stats.Max .Decimals}}</td></tr>
{{end}}</table>

<h2>Peak</h2>
<table>
<tr><th>Time</th><th>Power (W)</th><th>Voltage (V)</th><th>Current (A)</th></tr>
<tr><td>{{when .Peak.Timestamp}}</td><td>{{value .Peak.Power "power"}}</td><td>{{value .Peak.Voltage "voltage"}}</td><td>{{value .Peak.Current "current"}}</td></tr>
</table>

<h2>Monitoring period</h2>
<table>
<tr><td>Start</td><td>{{when .Start}}</td></tr>
<tr><td>End</td><td>{{when .End}}</td></tr>
<tr><td>Duration</td><td>{{span .Duration}}</td></tr>
</table>

<h2>Recent readings</h2>
<table>
<tr><th>Time</th><th>Voltage (V)</th><th>Current (A)</th><th>Power (W)</th><th>Frequency (Hz)</th><th>Power Factor</th></tr>
{{range .Recent}}<tr><td>{{when .Timestamp}}</td><td>{{value .Voltage "voltage"}}</td><td>{{value .Current "current"}}</td><td>{{value .Power "power"}}</td><td>{{value .Frequency "frequency"}}</td><td>{{value .PowerFactor "power_factor"}}</td></tr>
{{end}}</table>

<footer>{{with .SessionID}}Session {{.}}{{end}}</footer>
</body>
</html>
`))

var metricLabels = map[meter.Metric]string{
	meter.Voltage:     "Voltage",
	meter.Current:     "Current",
	meter.Power:       "Power",
	meter.Frequency:   "Frequency",
	meter.PowerFactor: "Power Factor",
}

// WriteHTML renders a self-contained HTML report of data.
func WriteHTML(w io.Writer, data Data, cfg config.Config) error {
	if data.Count == 0 {
		return errors.New().New(ErrNoData)
	}

	view := htmlView{Data: data, Dark: cfg.DarkMode}
	for _, m := range meter.Metrics() {
		view.Rows = append(view.Rows, statRow{
			Label:    metricLabels[m],
			Unit:     m.Unit(),
			Decimals: m.Decimals(),
			Stats:    data.Stats[m],
		})
	}

	if err := reportTemplate.Execute(w, view); err != nil {
		return errors.New().Wrap(ErrRender, err)
	}

	return nil
}

// HTML renders WriteHTML output to a string.
func HTML(data Data, cfg config.Config) (string, error) {
	var sb strings.Builder
	if err := WriteHTML(&sb, data, cfg); err != nil {
		return "", err
	}

	return sb.String(), nil
}
