// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"

	"news_reader/internal/model"
)

// Storage persists the last loaded article batch and refresh metadata.
type Storage interface {
	// ReplaceArticles swaps the stored batch for articles, keeping their order.
	ReplaceArticles(ctx context.Context, articles []model.Article) error
	// ListArticles returns the stored batch in load order. An empty category
	// or model.CategoryAll returns every article.
	ListArticles(ctx context.Context, category string) ([]model.Article, error)
	CountArticles(ctx context.Context) (int, error)
	Categories(ctx context.Context) ([]string, error)

	SetLastRefresh(ctx context.Context, t time.Time) error
	// LastRefresh returns the zero time if no refresh was recorded.
	LastRefresh(ctx context.Context) (time.Time, error)

	Close() error
}
