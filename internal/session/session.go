// Package session ties the search engine, interaction state and
// notification scheduler together for one consumer.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"news_reader/internal/article"
	"news_reader/internal/filter"
	"news_reader/internal/interaction"
	"news_reader/internal/model"
	"news_reader/internal/notify"
)

var (
	// ErrUnknownArticle is returned by Share when the URL is not in the
	// current batch.
	ErrUnknownArticle = errors.New("unknown article")
	// ErrShareUnsupported is returned by Share when no Sharer is configured.
	ErrShareUnsupported = errors.New("sharing is not supported")
)

// Sharer receives share requests. Delivery is fire-and-forget.
type Sharer interface {
	Share(ctx context.Context, req model.ShareRequest)
}

// Options configures a Session.
type Options struct {
	DebounceQuiet  time.Duration
	NotifyInterval time.Duration
	QueueLimit     int
	Alerter        notify.Alerter
	Sharer         Sharer
	IDs            *notify.IDGenerator
	// OnResults is called with the fresh results after every debounced
	// query commit. It runs on the debounce timer goroutine.
	OnResults func(q model.Query, results []model.Article)
}

// Session is one consumer's view of the shared article store.
type Session struct {
	store     *article.Store
	debouncer *filter.Debouncer
	queue     *notify.Queue
	scheduler *notify.Scheduler
	sharer    Sharer
	onResults func(model.Query, []model.Article)
	log       *slog.Logger

	mu          sync.Mutex
	query       model.Query
	interaction interaction.State
	closed      bool
}

// New creates a Session over store. Notifications start disabled.
func New(store *article.Store, log *slog.Logger, opts Options) *Session {
	s := &Session{
		store:     store,
		queue:     notify.NewQueue(opts.QueueLimit),
		sharer:    opts.Sharer,
		onResults: opts.OnResults,
		log:       log,
		query:     model.Query{Category: model.CategoryAll},
	}
	s.debouncer = filter.NewDebouncer(opts.DebounceQuiet, s.commitText)

	schedOpts := []notify.Option{notify.WithInterval(opts.NotifyInterval)}
	if opts.IDs != nil {
		schedOpts = append(schedOpts, notify.WithIDGenerator(opts.IDs))
	}
	s.scheduler = notify.NewScheduler(store, s.queue, opts.Alerter, log, schedOpts...)
	return s
}

// TypeQuery records raw search input. It becomes the active query text only
// after the debounce quiet period passes without further input.
func (s *Session) TypeQuery(text string) {
	s.debouncer.Set(text)
}

// CommitQuery makes text the active query text immediately, discarding any
// pending debounced input, and returns the new results.
func (s *Session) CommitQuery(text string) []model.Article {
	s.debouncer.Set(text)
	s.debouncer.Flush()
	return s.Results()
}

// PendingQuery reports whether typed input is waiting to be committed.
func (s *Session) PendingQuery() bool {
	return s.debouncer.Pending()
}

func (s *Session) commitText(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query.Text = text
	q := s.query
	s.mu.Unlock()

	results := filter.Filter(s.store.Snapshot(), q)
	s.log.Debug("query committed", "text", q.Text, "category", q.Category, "results", len(results))
	if s.onResults != nil {
		s.onResults(q, results)
	}
}

// SetCategory changes the category selector. An empty category means All.
func (s *Session) SetCategory(category string) []model.Article {
	if category == "" {
		category = model.CategoryAll
	}
	s.mu.Lock()
	s.query.Category = category
	s.mu.Unlock()
	return s.Results()
}

// Query returns the active query.
func (s *Session) Query() model.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Results recomputes the visible articles for the active query.
func (s *Session) Results() []model.Article {
	return filter.Filter(s.store.Snapshot(), s.Query())
}

// ToggleLike flips the liked flag of url and reports the new value.
// Any identity can be toggled, including one no longer in the store.
func (s *Session) ToggleLike(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interaction.ToggleLike(url)
}

// ToggleBookmark flips the bookmarked flag of the article and reports the
// new value.
func (s *Session) ToggleBookmark(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interaction.ToggleBookmark(url)
}

// Liked returns the liked identities, sorted.
func (s *Session) Liked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interaction.Liked.Items()
}

// Bookmarked returns the bookmarked identities, sorted.
func (s *Session) Bookmarked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interaction.Bookmarked.Items()
}

// IsLiked reports whether url is liked.
func (s *Session) IsLiked(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interaction.Liked.Contains(url)
}

// IsBookmarked reports whether url is bookmarked.
func (s *Session) IsBookmarked(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interaction.Bookmarked.Contains(url)
}

// ToggleNotifications enables or disables the notification scheduler and
// reports the new state.
func (s *Session) ToggleNotifications(ctx context.Context) bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return false
	}
	return s.scheduler.Toggle(ctx)
}

// NotificationsEnabled reports whether the scheduler is running.
func (s *Session) NotificationsEnabled() bool {
	return s.scheduler.Enabled()
}

// Notifications returns the queued notifications in arrival order.
func (s *Session) Notifications() []model.Notification {
	return s.queue.List()
}

// Dismiss removes one notification; unknown ids are ignored.
func (s *Session) Dismiss(id int64) bool {
	return s.queue.Dismiss(id)
}

// ClearNotifications dismisses every queued notification.
func (s *Session) ClearNotifications() {
	s.queue.Clear()
}

// Share hands the article to the Sharer without waiting for delivery.
func (s *Session) Share(ctx context.Context, url string) error {
	a, ok := s.store.Lookup(url)
	if !ok {
		return ErrUnknownArticle
	}
	if s.sharer == nil {
		return ErrShareUnsupported
	}
	s.sharer.Share(ctx, model.ShareRequest{Title: a.Title, Text: a.Description, URL: a.URL})
	return nil
}

// Close stops the debouncer and the scheduler. Pending input is discarded.
// Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Stop()
	s.scheduler.Stop()
}
