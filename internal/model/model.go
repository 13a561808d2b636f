// Package model defines the domain types used across the application.
package model

import "time"

// CategoryAll is the category selector that disables category filtering.
const CategoryAll = "All"

// Article is a single headline in the current batch.
// URL is its identity; likes, bookmarks and filter results key off it.
type Article struct {
	URL         string
	Title       string
	Description string
	Content     string
	Category    string
	Source      string
	Author      string
	ImageURL    string
	PublishedAt time.Time
}

// RawSource is the nested source object of an inbound record.
type RawSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawArticle is an inbound record as delivered by a source.
// Every field is optional; normalization happens in the article store.
type RawArticle struct {
	Source      RawSource `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
}

// Query is the user's current search input and category selector.
type Query struct {
	Text     string
	Category string
}

// AllCategories reports whether the query has no category restriction.
func (q Query) AllCategories() bool {
	return q.Category == "" || q.Category == CategoryAll
}

// Notification is a transient alert about a randomly chosen article.
type Notification struct {
	ID        int64
	Article   Article
	CreatedAt time.Time
}

// ShareRequest is handed to a share target; delivery is not awaited.
type ShareRequest struct {
	Title string
	Text  string
	URL   string
}
