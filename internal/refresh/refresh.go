// Package refresh periodically fetches article sources and replaces the
// current batch.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"news_reader/internal/article"
	"news_reader/internal/config"
	"news_reader/internal/fetcher"
	"news_reader/internal/storage"
)

// ErrAllSourcesFailed is returned when no source produced any records.
// The previous batch stays loaded.
var ErrAllSourcesFailed = errors.New("all sources failed")

// Stats summarizes one refresh.
type Stats struct {
	Loaded        int
	Dropped       int
	FailedSources int
}

// Refresher fetches every configured source, loads the result into the
// shared Store and writes a snapshot to storage.
type Refresher struct {
	store   *article.Store
	db      storage.Storage
	fetcher *fetcher.Fetcher
	sources []config.Source
	log     *slog.Logger
	tick    time.Duration
	now     func() time.Time

	mu sync.Mutex
}

// New creates a Refresher with the default HTTP client.
func New(store *article.Store, db storage.Storage, sources []config.Source, log *slog.Logger) *Refresher {
	return NewWithFetcher(store, db, fetcher.New(http.DefaultClient), sources, log)
}

// NewWithFetcher creates a Refresher with a custom fetcher (useful for testing).
func NewWithFetcher(store *article.Store, db storage.Storage, f *fetcher.Fetcher, sources []config.Source, log *slog.Logger) *Refresher {
	return &Refresher{
		store:   store,
		db:      db,
		fetcher: f,
		sources: sources,
		log:     log,
		tick:    30 * time.Minute,
		now:     time.Now,
	}
}

// SetTickInterval overrides the default 30-minute refresh interval.
func (r *Refresher) SetTickInterval(d time.Duration) {
	r.tick = d
}

// Warm loads the last stored snapshot into the Store. It is a no-op when
// nothing was stored yet.
func (r *Refresher) Warm(ctx context.Context) (int, error) {
	articles, err := r.db.ListArticles(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("load snapshot: %w", err)
	}
	if len(articles) == 0 {
		return 0, nil
	}
	r.store.Replace(articles)
	r.log.Info("loaded stored snapshot", "articles", len(articles))
	return len(articles), nil
}

// Run refreshes immediately and then on every tick, blocking until ctx is
// cancelled.
func (r *Refresher) Run(ctx context.Context) {
	r.refreshLogged(ctx)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshLogged(ctx)
		}
	}
}

func (r *Refresher) refreshLogged(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
		r.log.Error("refresh articles", "error", err)
	}
}

// Refresh fetches all sources once and replaces the batch. If every source
// fails the previous batch is kept and ErrAllSourcesFailed is returned.
// Refreshes are serialized.
func (r *Refresher) Refresh(ctx context.Context) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	res := r.fetcher.FetchAll(ctx, r.sources)
	stats := Stats{FailedSources: len(res.Errors)}
	for _, err := range res.Errors {
		r.log.Warn("fetch source", "error", err)
	}
	if len(res.Errors) > 0 && len(res.Errors) == len(r.sources) {
		return stats, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(res.Errors...))
	}

	articles, dropped := r.store.Load(res.Articles)
	stats.Loaded = len(articles)
	stats.Dropped = len(dropped)
	for _, err := range dropped {
		r.log.Debug("dropped record", "error", err)
	}
	r.log.Info("articles refreshed",
		"loaded", stats.Loaded, "dropped", stats.Dropped, "failed_sources", stats.FailedSources)

	if err := r.db.ReplaceArticles(ctx, articles); err != nil {
		return stats, fmt.Errorf("store snapshot: %w", err)
	}
	if err := r.db.SetLastRefresh(ctx, r.now()); err != nil {
		return stats, fmt.Errorf("store refresh time: %w", err)
	}
	return stats, nil
}
