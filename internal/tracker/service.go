package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/openbob/openbob/internal/config"
	"github.com/openbob/openbob/internal/logger"
	"github.com/openbob/openbob/pkg/window"
)

// Poll results reported to a Recorder
const (
	PollOK          = "ok"
	PollUnavailable = "unavailable"
)

// EntryLookup resolves an id to its current accumulator entry
type EntryLookup func(window.ID) (Entry, bool)

// EventSink receives every poll's events after the accumulator has been
// updated. Sink errors are logged and never stop polling.
type EventSink interface {
	HandleEvents(at time.Time, events []Event, lookup EntryLookup) error
	HandleUnavailable(at time.Time, err error) error
	HandleShutdown(at time.Time, open []Entry) error
}

// Recorder observes poll outcomes, typically for metrics
type Recorder interface {
	ObservePoll(result string, took time.Duration)
	ObserveEvents(events []Event)
	ObserveWindows(open, tracked int)
}

// Option configures a Service
type Option func(*Service)

// WithSink adds an event sink
func WithSink(sink EventSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithRecorder sets the poll recorder
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithExclude sets the host self-exclusion predicate
func WithExclude(fn window.ExcludeFunc) Option {
	return func(s *Service) {
		s.filter.Exclude = fn
	}
}

// WithClock replaces time.Now for poll timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service is the polling loop. It owns the provider calls and is the only
// writer of its Accumulator.
type Service struct {
	config   *config.Config
	provider window.Provider
	acc      *Accumulator
	filter   window.Options
	sinks    []EventSink
	recorder Recorder
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewService(cfg *config.Config, provider window.Provider, opts ...Option) *Service {
	s := &Service{
		config:   cfg,
		provider: provider,
		acc:      NewAccumulator(),
		filter:   window.Options{ExcludedTitles: cfg.Tracker.ExcludeTitles},
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accumulator returns the store consumers read snapshots from
func (s *Service) Accumulator() *Accumulator {
	return s.acc
}

// Snapshot is shorthand for Accumulator().Snapshot()
func (s *Service) Snapshot() []Entry {
	return s.acc.Snapshot()
}

// Start polls once immediately and then every PollInterval until ctx is
// cancelled or Stop is called. The timer is re-armed after each poll, so a
// slow poll is followed straight by the next one without catch-up.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("tracker is already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.shutdown()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	interval := s.config.Tracker.PollInterval
	logger.Infof("Starting tracker with %v poll interval (provider: %s)", interval, s.provider.Name())

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Tracker stopped by context")
			return ctx.Err()

		case <-s.stopChan:
			logger.Info("Tracker stopped")
			return nil

		case <-timer.C:
			began := time.Now()
			if err := s.PollOnce(); err != nil {
				logger.Warnf("Poll skipped: %v", err)
			}
			wait := interval - time.Since(began)
			if wait < 0 {
				wait = 0
			}
			timer.Reset(wait)
		}
	}
}

// Stop ends a running Start loop. It is safe to call more than once; a
// stopped Service is not restarted.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// PollOnce runs a single enumerate, diff and accumulate cycle. When
// enumeration is unavailable the accumulator is left untouched and the
// error is returned.
func (s *Service) PollOnce() error {
	began := time.Now()
	at := s.now()

	records, err := s.provider.EnumerateWindows()
	if err != nil {
		if !errors.Is(err, window.ErrEnumerationUnavailable) {
			err = window.Unavailable(err, s.provider.Name())
		}
		s.handleUnavailable(at, err, time.Since(began))
		return err
	}

	kept, skipped := window.Filter(records, s.filter)
	for _, skipErr := range skipped {
		logger.Debugf("Skipping window: %v", skipErr)
	}

	prev := s.acc.State()

	focused, err := s.provider.FocusedWindow()
	if err != nil {
		logger.Debugf("Focus query failed, keeping previous focus: %v", err)
		focused = prev.Focused
	}

	events := Detect(prev, kept, focused)
	s.acc.ApplyPoll(Poll{
		At:      at,
		Elapsed: s.config.Tracker.PollInterval,
		Windows: kept,
		Events:  events,
	})

	for _, ev := range events {
		logger.Debugf("Window event: %s", ev)
	}

	for _, sink := range s.sinks {
		if err := sink.HandleEvents(at, events, s.acc.Entry); err != nil {
			logger.Error("Failed to record window events", err)
		}
	}

	if s.recorder != nil {
		stats := s.acc.Stats()
		s.recorder.ObservePoll(PollOK, time.Since(began))
		s.recorder.ObserveEvents(events)
		s.recorder.ObserveWindows(stats.Open, stats.Tracked)
	}

	return nil
}

func (s *Service) handleUnavailable(at time.Time, err error, took time.Duration) {
	if s.recorder != nil {
		s.recorder.ObservePoll(PollUnavailable, took)
	}

	for _, sink := range s.sinks {
		if sinkErr := sink.HandleUnavailable(at, err); sinkErr != nil {
			logger.Errorf("Failed to store error (original error: %v)", sinkErr, err)
		}
	}
}

func (s *Service) shutdown() {
	if len(s.sinks) == 0 {
		return
	}

	var open []Entry
	for _, e := range s.acc.Snapshot() {
		if e.Open {
			open = append(open, e)
		}
	}

	at := s.now()
	for _, sink := range s.sinks {
		if err := sink.HandleShutdown(at, open); err != nil {
			logger.Error("Failed to flush open window sessions", err)
		}
	}
}
