package notify

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"news_reader/internal/model"
)

// DefaultInterval is the time between notifications while enabled.
const DefaultInterval = 10 * time.Second

// Source supplies articles to notify about.
type Source interface {
	// Random picks one article, reading the live batch size on every call.
	Random(r *rand.Rand) (model.Article, bool)
}

// Alerter is the one-shot side effect fired for every emitted notification.
type Alerter interface {
	Alert(ctx context.Context, n model.Notification)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(ctx context.Context, n model.Notification)

// Alert calls f(ctx, n).
func (f AlerterFunc) Alert(ctx context.Context, n model.Notification) { f(ctx, n) }

type tickerFunc func(d time.Duration) (<-chan time.Time, func())

func newTimeTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Scheduler periodically pushes a notification about a random article onto
// a Queue while it is enabled.
type Scheduler struct {
	source   Source
	queue    *Queue
	ids      *IDGenerator
	alerter  Alerter
	log      *slog.Logger
	interval time.Duration
	ticker   tickerFunc

	mu     sync.Mutex
	rnd    *rand.Rand
	run    uint64
	cancel context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRand sets the random source used to pick articles.
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) { s.rnd = r }
}

// WithIDGenerator shares an id generator between schedulers.
func WithIDGenerator(g *IDGenerator) Option {
	return func(s *Scheduler) { s.ids = g }
}

// NewScheduler creates a disabled Scheduler. alerter may be nil.
func NewScheduler(source Source, queue *Queue, alerter Alerter, log *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:   source,
		queue:    queue,
		alerter:  alerter,
		log:      log,
		interval: DefaultInterval,
		ticker:   newTimeTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewIDGenerator()
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Enabled reports whether the scheduler is running.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Start enables the scheduler. The first notification comes one full
// interval after Start. Starting a running scheduler does nothing.
// Cancelling ctx has the same effect as Stop, except Enabled keeps
// reporting true until Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked(ctx)
}

func (s *Scheduler) startLocked(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	s.run++
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	c, stop := s.ticker(s.interval)
	go s.loop(ctx, s.run, c, stop)

	s.log.Debug("notifications enabled", "interval", s.interval)
}

// Stop disables the scheduler. No notification is emitted after Stop
// returns, even if a tick was already due. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.run++

	s.log.Debug("notifications disabled")
}

// Toggle flips the scheduler between enabled and disabled and reports the
// new state. Concurrent calls alternate.
func (s *Scheduler) Toggle(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.stopLocked()
		return false
	}
	s.startLocked(ctx)
	return true
}

func (s *Scheduler) loop(ctx context.Context, run uint64, c <-chan time.Time, stop func()) {
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c:
			s.emit(ctx, run)
		}
	}
}

// emit produces one notification for the given run. A tick belonging to a
// run that has since been stopped is dropped.
func (s *Scheduler) emit(ctx context.Context, run uint64) (model.Notification, bool) {
	s.mu.Lock()
	if run != s.run || s.cancel == nil {
		s.mu.Unlock()
		return model.Notification{}, false
	}
	a, ok := s.source.Random(s.rnd)
	if !ok {
		s.mu.Unlock()
		s.log.Debug("no articles to notify about")
		return model.Notification{}, false
	}
	n := model.Notification{
		ID:        s.ids.Next(),
		Article:   a,
		CreatedAt: time.Now().UTC(),
	}
	s.queue.Push(n)
	s.mu.Unlock()

	if s.alerter != nil {
		s.alerter.Alert(ctx, n)
	}
	return n, true
}
