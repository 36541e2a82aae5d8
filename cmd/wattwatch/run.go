package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/connectivity"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/metrics"
	"codeberg.org/mutker/wattwatch/internal/pid"
	"codeberg.org/mutker/wattwatch/internal/session"
	"codeberg.org/mutker/wattwatch/internal/telemetry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the meter until interrupted",
		Long: `Poll the meter on the configured interval until SIGINT or SIGTERM.
SIGUSR1 writes the CSV and HTML exports immediately; they are also written on exit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), a.opts)
		},
	}
}

func run(parent context.Context, opts *config.Options) error {
	log := logger.Get()

	if err := pid.Write(opts.PIDFile); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(opts.PIDFile); err != nil {
			log.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, st, err := openStore(ctx, opts, log)
	if err != nil {
		return err
	}
	defer closeSettings(st, log)

	id := uuid.NewString()
	log = log.With("session", id)

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewService(metrics.Config{
		Enabled:   opts.MetricsAddr != "",
		Namespace: "wattwatch",
		SessionID: id,
	}, reg)
	if err != nil {
		return err
	}

	monitor := connectivity.New(true, connectivity.WithLogger(log))
	monitor.OnChange(recorder.SetOnline)
	recorder.SetOnline(true)

	client := telemetry.NewClient(store,
		telemetry.WithSignal(monitor),
		telemetry.WithLogger(log.With("component", "telemetry")),
	)

	sess := session.New(store, client,
		session.WithID(id),
		session.WithRecorder(recorder),
		session.WithSignal(monitor),
		session.WithObserver(logObserver{log: log}),
		session.WithLogger(logger.Get()),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sess.Start(ctx)
		<-ctx.Done()
		sess.Stop()
		return nil
	})

	if opts.ProbeInterval > 0 {
		g.Go(func() error {
			return monitor.Probe(ctx, store.APIBaseURL, time.Duration(opts.ProbeInterval)*time.Second)
		})
	}

	if opts.MetricsAddr != "" {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		serveMetrics(ctx, g, opts.MetricsAddr, reg, log)
	}

	g.Go(func() error {
		usr := make(chan os.Signal, 1)
		signal.Notify(usr, syscall.SIGUSR1)
		defer signal.Stop(usr)

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-usr:
				log.Info().Msg("Received SIGUSR1, writing exports")
				writeExports(sess, opts, log)
			}
		}
	})

	err = g.Wait()
	writeExports(sess, opts, log)
	log.Info().Msg("Exiting...")

	return err
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, reg *prometheus.Registry, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.New().Wrap(errors.ErrInitFailed, err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.New().Wrap(errors.ErrShutdownFailed, err)
		}
		return nil
	})
}

// logObserver reports session events through the logger.
type logObserver struct {
	log logger.Logger
}

func (o logObserver) OnReading(u session.Update) {
	r := u.Reading
	o.log.Info().
		Str("voltage", r.Voltage.Format(2)).
		Str("current", r.Current.Format(3)).
		Str("power", r.Power.Format(2)).
		Str("frequency", r.Frequency.Format(1)).
		Str("power_factor", r.PowerFactor.Format(2)).
		Float64("energy_kwh", u.CumulativeKWh).
		Msg("Reading")
}

func (o logObserver) OnStatus(s session.Status) {
	if s.State == session.Connected {
		return
	}
	o.log.Warn().Str("status", s.State.String()).Err(s.Err).Msg("Meter unavailable")
}
