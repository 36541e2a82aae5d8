// Package scheduler runs a task on a self-rescheduling loop.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/wattwatch/internal/logger"
)

// State of the scheduler.
type State int32

const (
	Idle State = iota
	Polling
)

func (s State) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

// Task is one poll cycle. It must honour ctx cancellation.
type Task func(ctx context.Context)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithOnline gates each tick; the task is skipped while it returns false.
func WithOnline(online func() bool) Option {
	return func(s *Scheduler) { s.online = online }
}

// WithOnSkip is called for every tick skipped while offline.
func WithOnSkip(fn func()) Option {
	return func(s *Scheduler) { s.onSkip = fn }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// Scheduler runs Task, waits interval() after it completes, and repeats.
// At most one loop, and therefore one cycle, exists at a time.
type Scheduler struct {
	task     Task
	interval func() time.Duration
	online   func() bool
	onSkip   func()
	logger   logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32
}

// New returns an idle Scheduler.
func New(task Task, interval func() time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		task:     task,
		interval: interval,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start begins polling with an immediate first tick. A loop that is already
// running is cancelled and drained first. Must not be called from the task.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.loop(loopCtx, done)
}

// Stop cancels the pending wait and any in-flight cycle, and waits for the
// loop to exit. Must not be called from the task.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// State reports Polling while a cycle is executing.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Running reports whether a loop exists.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	s.logger.Debug().Msg("Polling loop started")

	for {
		if s.online == nil || s.online() {
			s.state.Store(int32(Polling))
			s.task(ctx)
			s.state.Store(int32(Idle))
		} else {
			s.logger.Debug().Msg("Offline, skipping tick")
			if s.onSkip != nil {
				s.onSkip()
			}
		}

		wait := s.interval()
		if wait <= 0 {
			wait = time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Debug().Msg("Polling loop stopped")
			return
		case <-timer.C:
		}
	}
}
