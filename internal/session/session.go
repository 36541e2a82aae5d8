// Package session wires the poller components into one explicit state object.
package session

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/connectivity"
	"codeberg.org/mutker/wattwatch/internal/energy"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/history"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/meter"
	"codeberg.org/mutker/wattwatch/internal/metrics"
	"codeberg.org/mutker/wattwatch/internal/report"
	"codeberg.org/mutker/wattwatch/internal/retry"
	"codeberg.org/mutker/wattwatch/internal/scheduler"
	"codeberg.org/mutker/wattwatch/internal/status"
	"codeberg.org/mutker/wattwatch/internal/telemetry"
	"github.com/google/uuid"
)

// Option configures a Session.
type Option func(*Session)

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

func WithChartSink(sink history.ChartSink) Option {
	return func(s *Session) { s.chartSink = sink }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

func WithSignal(sig connectivity.Signal) Option {
	return func(s *Session) { s.online = sig }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithClassifier(c status.Classifier) Option {
	return func(s *Session) { s.classifier = c }
}

// WithRetryOptions passes options to the retry controller.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(s *Session) { s.retryOpts = append(s.retryOpts, opts...) }
}

// WithID sets the session id instead of a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session owns the state of one monitoring session.
type Session struct {
	id         string
	store      *config.Store
	retry      *retry.Controller
	sched      *scheduler.Scheduler
	energy     *energy.Integrator
	classifier status.Classifier
	buffer     *history.Buffer
	chart      *history.ChartFeed
	chartSink  history.ChartSink
	recorder   metrics.Recorder
	observer   Observer
	online     connectivity.Signal
	logger     logger.Logger
	now        func() time.Time
	retryOpts  []retry.Option

	// fetchMu serializes scheduled cycles with manual refreshes.
	fetchMu sync.Mutex

	// lifeMu orders Start, Stop and config restarts against each other.
	lifeMu sync.Mutex

	mu         sync.Mutex
	gen        uint64
	running    bool
	runCtx     context.Context
	latest     meter.Reading
	hasLatest  bool
	severities map[meter.Metric]status.Severity
	lastUpdate time.Time
	status     Status
}

// New builds an idle Session fetching through f with settings from store.
func New(store *config.Store, f telemetry.Fetcher, opts ...Option) *Session {
	s := &Session{
		store:      store,
		energy:     energy.NewIntegrator(),
		classifier: status.NewClassifier(status.DefaultTable()),
		buffer:     history.NewBuffer(history.DefaultCapacity),
		recorder:   metrics.Noop(),
		observer:   nopObserver{},
		online:     connectivity.Static(true),
		logger:     logger.Nop(),
		now:        time.Now,
		status:     Status{State: Offline},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.logger = s.logger.With("session", s.id)

	s.chart = history.NewChartFeed(history.DefaultChartPoints, s.chartSink)

	retryOpts := append([]retry.Option{
		retry.WithLogger(s.logger),
		retry.WithOnRetry(s.retried),
	}, s.retryOpts...)
	s.retry = retry.New(f, retryOpts...)

	s.sched = scheduler.New(s.cycle, store.Interval,
		scheduler.WithOnline(s.online.Online),
		scheduler.WithOnSkip(s.skipped),
		scheduler.WithLogger(s.logger),
	)

	store.OnChange(s.configChanged)

	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Start begins polling. Calling Start while running restarts the loop.
func (s *Session) Start(ctx context.Context) {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	s.mu.Lock()
	s.running = true
	s.runCtx = ctx
	s.mu.Unlock()

	cfg := s.store.Get()
	s.logger.Info().
		Str("device_id", cfg.DeviceID).
		Int("interval", cfg.PollIntervalSeconds).
		Msg("Polling started")

	s.sched.Start(ctx)
}

// Stop halts polling. A fetch still in flight is cancelled and its result dropped.
func (s *Session) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	s.mu.Lock()
	s.gen++
	wasRunning := s.running
	s.running = false
	s.runCtx = nil
	s.mu.Unlock()

	s.sched.Stop()

	if wasRunning {
		s.logger.Info().Msg("Polling stopped")
	}
}

// Running reports whether polling is active.
func (s *Session) Running() bool {
	return s.sched.Running()
}

// Refresh performs one fetch outside the schedule and applies it.
func (s *Session) Refresh(ctx context.Context) (meter.Reading, error) {
	gen := s.generation()
	cfg := s.store.Get()

	start := s.now()
	r, err := s.fetch(ctx, cfg.DeviceID)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.failed(gen, err, elapsed)
		return meter.Reading{}, err
	}

	if !s.apply(gen, r, cfg, elapsed) {
		return r, errors.New().WithMessage(errors.ErrCanceled, "session was stopped or reset during the fetch")
	}

	return r, nil
}

// Reset clears history, chart and cumulative energy. Polling continues.
func (s *Session) Reset() {
	s.mu.Lock()
	s.gen++
	s.energy.Reset()
	s.buffer.Clear()
	s.chart.Clear()
	s.latest = meter.Reading{}
	s.hasLatest = false
	s.severities = nil
	s.lastUpdate = time.Time{}
	s.mu.Unlock()

	s.recorder.SetHistorySize(0)
	s.recorder.ObserveReading(meter.Reading{}, 0)
	s.logger.Info().Msg("Session reset")
}

// Report summarizes the history.
func (s *Session) Report() (report.Data, error) {
	s.mu.Lock()
	readings := s.buffer.All()
	total := s.energy.Total()
	s.mu.Unlock()

	data, err := report.Summarize(readings, total, s.store.Get())
	if err != nil {
		return report.Data{}, err
	}
	data.SessionID = s.id
	data.GeneratedAt = s.now()

	return data, nil
}

// CSV renders the history as CSV.
func (s *Session) CSV() (string, error) {
	return report.CSV(s.buffer.All(), s.store.Get())
}

// HTML renders the HTML report.
func (s *Session) HTML() (string, error) {
	data, err := s.Report()
	if err != nil {
		return "", err
	}

	return report.HTML(data, s.store.Get())
}

// ShareText renders the latest reading as plain text.
func (s *Session) ShareText() (string, error) {
	s.mu.Lock()
	latest, ok := s.latest, s.hasLatest
	total := s.energy.Total()
	s.mu.Unlock()

	if !ok {
		return "", errors.New().New(errors.ErrNoData)
	}

	return report.ShareText(latest, total, s.now()), nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	severities := make(map[meter.Metric]status.Severity, len(s.severities))
	for m, sev := range s.severities {
		severities[m] = sev
	}

	return Snapshot{
		SessionID:     s.id,
		Latest:        s.latest,
		HasReading:    s.hasLatest,
		Severities:    severities,
		CumulativeKWh: s.energy.Total(),
		LastUpdate:    s.lastUpdate,
		Status:        s.status,
		Polling:       s.running,
		HistorySize:   s.buffer.Len(),
	}
}

// Chart returns the live chart window.
func (s *Session) Chart() []history.Point {
	return s.chart.Points()
}

func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Session) fetch(ctx context.Context, deviceID string) (meter.Reading, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()
	return s.retry.FetchWithRetry(ctx, deviceID)
}

func (s *Session) cycle(ctx context.Context) {
	gen := s.generation()
	cfg := s.store.Get()

	start := s.now()
	r, err := s.fetch(ctx, cfg.DeviceID)
	elapsed := s.now().Sub(start)

	if err != nil {
		if ctx.Err() != nil {
			s.logger.Debug().Err(err).Msg("Cycle cancelled")
			return
		}
		s.failed(gen, err, elapsed)
		return
	}

	s.apply(gen, r, cfg, elapsed)
}

// apply integrates r unless the generation moved on while it was fetched.
func (s *Session) apply(gen uint64, r meter.Reading, cfg config.Config, elapsed time.Duration) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug().Msg("Dropping stale reading")
		return false
	}

	total := s.energy.Apply(r, cfg.PollIntervalSeconds)
	s.buffer.Append(r)
	s.chart.Add(r)
	severities := s.classifier.ClassifyReading(r)
	s.latest = r
	s.hasLatest = true
	s.severities = severities
	s.lastUpdate = s.now()
	s.status = Status{State: Connected, At: s.lastUpdate}
	st := s.status
	size := s.buffer.Len()
	s.mu.Unlock()

	s.recorder.ObservePoll(metrics.OutcomeSuccess, elapsed)
	s.recorder.ObserveReading(r, total)
	s.recorder.SetHistorySize(size)

	ev := s.logger.Debug().
		Str("voltage", r.Voltage.Format(meter.Voltage.Decimals())).
		Str("power", r.Power.Format(meter.Power.Decimals())).
		Float64("energy_kwh", total)
	for m, sev := range severities {
		ev = ev.Str(string(m)+"_status", sev.String())
	}
	ev.Msg("Reading applied")

	for m, sev := range severities {
		if sev == status.Critical {
			s.logger.Warn().Str("metric", string(m)).Str("value", r.Value(m).Format(m.Decimals())).Msg("Reading outside safe range")
		}
	}

	s.observer.OnStatus(st)
	s.observer.OnReading(Update{
		Reading:       r,
		Severities:    severities,
		CumulativeKWh: total,
		HistorySize:   size,
	})

	return true
}

func (s *Session) failed(gen uint64, err error, elapsed time.Duration) {
	state := Error
	if errors.HasCode(err, errors.ErrOffline) {
		state = Offline
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.status = Status{State: state, Err: err, At: s.now()}
	st := s.status
	s.mu.Unlock()

	s.recorder.ObservePoll(metrics.OutcomeError, elapsed)
	if appErr, ok := err.(errors.Error); ok {
		s.logger.ErrorWithCode(appErr).Msg("Poll failed")
	} else {
		s.logger.Error().Err(err).Msg("Poll failed")
	}

	s.observer.OnStatus(st)
}

func (s *Session) skipped() {
	s.mu.Lock()
	s.status = Status{State: Offline, At: s.now()}
	st := s.status
	s.mu.Unlock()

	s.recorder.ObservePoll(metrics.OutcomeOffline, 0)
	s.observer.OnStatus(st)
}

func (s *Session) retried(attempt int, err error) {
	code, _ := errors.CodeOf(err)
	s.recorder.ObserveRetry(string(code))
	s.logger.Warn().
		Err(err).
		Int("attempt", attempt).
		Int("max_retries", s.retry.MaxRetries()).
		Msg("Fetch failed, retrying")
}

func (s *Session) configChanged(cfg config.Config) {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	s.mu.Lock()
	running, ctx := s.running, s.runCtx
	s.mu.Unlock()

	if !running || ctx == nil {
		return
	}

	s.logger.Info().
		Str("device_id", cfg.DeviceID).
		Int("interval", cfg.PollIntervalSeconds).
		Msg("Configuration changed, restarting polling")
	s.sched.Start(ctx)
}
