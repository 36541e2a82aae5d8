// Package metrics exports poller instrumentation to Prometheus.
package metrics

import (
	"time"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/meter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type service struct {
	polls        *prometheus.CounterVec
	pollDuration prometheus.Histogram
	retries      *prometheus.CounterVec
	reading      *prometheus.GaugeVec
	energy       prometheus.Gauge
	online       prometheus.Gauge
	history      prometheus.Gauge
	lastSuccess  prometheus.Gauge
}

// No-op implementation
type noopRecorder struct{}

// NewService registers the collectors on reg. A disabled config yields a no-op Recorder.
func NewService(cfg Config, reg prometheus.Registerer) (rec Recorder, err error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Metrics disabled, using no-op recorder")
		return Noop(), nil
	}

	// promauto panics on duplicate registration.
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			if e, ok := r.(error); ok {
				err = errFactory.Wrap(ErrRegister, e)
				return
			}
			err = errFactory.WithData(ErrRegister, r)
		}
	}()

	var labels prometheus.Labels
	if cfg.SessionID != "" {
		labels = prometheus.Labels{"session": cfg.SessionID}
	}
	factory := promauto.With(reg)
	ns := cfg.Namespace

	s := &service{
		polls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "polls_total",
			Help:        "Poll cycles by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		pollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Name:        "poll_duration_seconds",
			Help:        "Duration of poll cycles including retries",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			ConstLabels: labels,
		}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "retries_total",
			Help:        "Fetch retries by error code",
			ConstLabels: labels,
		}, []string{"code"}),
		reading: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "reading",
			Help:        "Latest meter reading by metric",
			ConstLabels: labels,
		}, []string{"metric"}),
		energy: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "energy_kwh",
			Help:        "Cumulative energy of the session",
			ConstLabels: labels,
		}),
		online: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "online",
			Help:        "1 when the meter API is reachable",
			ConstLabels: labels,
		}),
		history: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "history_readings",
			Help:        "Readings held in the history buffer",
			ConstLabels: labels,
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "last_success_timestamp_seconds",
			Help:        "Unix time of the last successful poll",
			ConstLabels: labels,
		}),
	}

	logger.Debug().Str("namespace", ns).Msg("Metrics recorder initialized")

	return s, nil
}

func (s *service) ObservePoll(outcome Outcome, elapsed time.Duration) {
	s.polls.WithLabelValues(string(outcome)).Inc()
	if outcome == OutcomeOffline {
		return
	}
	s.pollDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		s.lastSuccess.SetToCurrentTime()
	}
}

func (s *service) ObserveRetry(code string) {
	s.retries.WithLabelValues(code).Inc()
}

func (s *service) ObserveReading(r meter.Reading, cumulativeKWh float64) {
	for _, m := range meter.Metrics() {
		if v, ok := r.Value(m).Get(); ok {
			s.reading.WithLabelValues(string(m)).Set(v)
		} else {
			s.reading.DeleteLabelValues(string(m))
		}
	}
	s.energy.Set(cumulativeKWh)
}

func (s *service) SetOnline(online bool) {
	if online {
		s.online.Set(1)
		return
	}
	s.online.Set(0)
}

func (s *service) SetHistorySize(n int) {
	s.history.Set(float64(n))
}

// Noop returns a Recorder that drops everything.
func Noop() Recorder {
	return noopRecorder{}
}

func (noopRecorder) ObservePoll(Outcome, time.Duration)    {}
func (noopRecorder) ObserveRetry(string)                   {}
func (noopRecorder) ObserveReading(meter.Reading, float64) {}
func (noopRecorder) SetOnline(bool)                        {}
func (noopRecorder) SetHistorySize(int)                    {}
