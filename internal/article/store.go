// Package article holds the current batch of fetched articles.
package article

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"news_reader/internal/model"
)

var (
	// ErrMalformedArticle marks an inbound record that lacks a URL or a title.
	ErrMalformedArticle = errors.New("malformed article")
	// ErrDuplicateArticle marks a record whose URL already appeared in the batch.
	ErrDuplicateArticle = errors.New("duplicate article")
)

// removedPlaceholder is what NewsAPI puts in every field of a retracted article.
const removedPlaceholder = "[Removed]"

// Normalize converts raw records into articles. Records without a URL or
// title are dropped, as are later records repeating an earlier URL.
// The returned errors describe every dropped record and wrap ErrMalformedArticle
// or ErrDuplicateArticle.
func Normalize(raw []model.RawArticle) ([]model.Article, []error) {
	articles := make([]model.Article, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	var dropped []error

	for i, r := range raw {
		a, err := normalizeOne(r)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, ok := seen[a.URL]; ok {
			dropped = append(dropped, fmt.Errorf("record %d: %w: %s", i, ErrDuplicateArticle, a.URL))
			continue
		}
		seen[a.URL] = struct{}{}
		articles = append(articles, a)
	}
	return articles, dropped
}

func normalizeOne(r model.RawArticle) (model.Article, error) {
	url := strings.TrimSpace(r.URL)
	title := strings.TrimSpace(r.Title)
	switch {
	case url == "":
		return model.Article{}, fmt.Errorf("%w: missing url", ErrMalformedArticle)
	case title == "" || title == removedPlaceholder:
		return model.Article{}, fmt.Errorf("%w: missing title for %s", ErrMalformedArticle, url)
	}

	a := model.Article{
		URL:         url,
		Title:       title,
		Description: strings.TrimSpace(r.Description),
		Content:     strings.TrimSpace(r.Content),
		Category:    strings.TrimSpace(r.Category),
		Source:      strings.TrimSpace(r.Source.Name),
		Author:      strings.TrimSpace(r.Author),
		ImageURL:    strings.TrimSpace(r.URLToImage),
	}
	if r.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.PublishedAt); err == nil {
			a.PublishedAt = t.UTC()
		}
	}
	return a, nil
}

// Store is the in-memory article batch shared by every session.
// A load replaces the batch wholesale; there is no merge across loads.
type Store struct {
	mu       sync.RWMutex
	articles []model.Article
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Load normalizes raw records and replaces the batch with the result.
// It returns the normalized batch and the reasons for every dropped record.
func (s *Store) Load(raw []model.RawArticle) ([]model.Article, []error) {
	articles, dropped := Normalize(raw)
	s.Replace(articles)
	return articles, dropped
}

// Replace swaps in a new batch. The slice is copied.
func (s *Store) Replace(articles []model.Article) {
	cp := make([]model.Article, len(articles))
	copy(cp, articles)

	s.mu.Lock()
	s.articles = cp
	s.mu.Unlock()
}

// Snapshot returns a copy of the current batch in load order.
func (s *Store) Snapshot() []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]model.Article, len(s.articles))
	copy(cp, s.articles)
	return cp
}

// Len returns the size of the current batch.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// Random picks one article uniformly at random. The batch length is read
// at call time, so a batch that shrank since the last call is never indexed
// out of range. ok is false when the store is empty.
func (s *Store) Random(r *rand.Rand) (a model.Article, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.articles)
	if n == 0 {
		return model.Article{}, false
	}
	var i int
	if r != nil {
		i = r.IntN(n)
	} else {
		i = rand.IntN(n)
	}
	return s.articles[i], true
}

// Lookup returns the article with the given URL.
func (s *Store) Lookup(url string) (model.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.articles {
		if a.URL == url {
			return a, true
		}
	}
	return model.Article{}, false
}

// Categories returns the distinct non-empty categories of the batch, sorted.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[string]struct{})
	for _, a := range s.articles {
		if a.Category != "" {
			set[a.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
