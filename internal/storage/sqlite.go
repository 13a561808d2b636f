package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"news_reader/internal/model"
	"news_reader/migrations"
)

const (
	timeLayout     = time.RFC3339
	insertBatch    = 500
	metaLastReload = "last_refresh"
)

var articleColumns = []string{
	"position", "url", "title", "description", "content",
	"category", "source", "author", "image_url", "published_at",
}

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite has a single writer and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ReplaceArticles deletes the stored batch and inserts articles in one
// transaction.
func (s *SQLite) ReplaceArticles(ctx context.Context, articles []model.Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := sq.Delete("articles").ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}

	for start := 0; start < len(articles); start += insertBatch {
		end := min(start+insertBatch, len(articles))
		ins := sq.Insert("articles").Columns(articleColumns...)
		for i := start; i < end; i++ {
			a := articles[i]
			ins = ins.Values(i, a.URL, a.Title, a.Description, a.Content,
				a.Category, a.Source, a.Author, a.ImageURL, formatTime(a.PublishedAt))
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert articles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListArticles returns stored articles in load order, optionally restricted
// to one category.
func (s *SQLite) ListArticles(ctx context.Context, category string) ([]model.Article, error) {
	qb := sq.Select(articleColumns[1:]...).From("articles").OrderBy("position")
	if category != "" && category != model.CategoryAll {
		qb = qb.Where(sq.Eq{"category": category})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

// CountArticles returns the size of the stored batch.
func (s *SQLite) CountArticles(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("articles").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// Categories returns the distinct non-empty categories of the stored batch,
// sorted.
func (s *SQLite) Categories(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("DISTINCT category").
		From("articles").
		Where(sq.NotEq{"category": ""}).
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SetLastRefresh records when the stored batch was fetched.
func (s *SQLite) SetLastRefresh(ctx context.Context, t time.Time) error {
	query, args, err := sq.Insert("meta").
		Columns("key", "value").
		Values(metaLastReload, t.UTC().Format(timeLayout)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set last refresh: %w", err)
	}
	return nil
}

// LastRefresh returns when the stored batch was fetched.
func (s *SQLite) LastRefresh(ctx context.Context) (time.Time, error) {
	query, args, err := sq.Select("value").From("meta").Where(sq.Eq{"key": metaLastReload}).ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build select: %w", err)
	}

	var raw string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last refresh: %w", err)
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last refresh: %w", err)
	}
	return t, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanArticle(row scannable) (model.Article, error) {
	var a model.Article
	var published sql.NullString
	if err := row.Scan(&a.URL, &a.Title, &a.Description, &a.Content,
		&a.Category, &a.Source, &a.Author, &a.ImageURL, &published); err != nil {
		return a, fmt.Errorf("scan article: %w", err)
	}
	if published.Valid {
		t, err := time.Parse(timeLayout, published.String)
		if err != nil {
			return a, fmt.Errorf("parse published_at: %w", err)
		}
		a.PublishedAt = t
	}
	return a, nil
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	v := t.UTC().Format(timeLayout)
	return &v
}
