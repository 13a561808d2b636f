// Package filter implements the article search engine.
package filter

import (
	"strings"

	"news_reader/internal/model"
)

// Tokenize lowercases text and splits it on whitespace.
// A nil result means no text filter.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Filter returns the articles matching the query, in input order.
// The input slice is never modified; the result is always a fresh slice.
func Filter(articles []model.Article, q model.Query) []model.Article {
	tokens := Tokenize(q.Text)
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if !MatchesCategory(a, q.Category) {
			continue
		}
		if !MatchesText(a, tokens) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// MatchesText reports whether every token is a substring of the article's
// searchable text. Tokens must already be lowercase (see Tokenize).
// Partial words count: "cat" matches "category".
func MatchesText(a model.Article, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	text := searchableText(a)
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

// MatchesCategory applies the category selector.
// Every article matches "All" (or an empty selector). An article without a
// category never matches a specific category.
func MatchesCategory(a model.Article, category string) bool {
	if category == "" || category == model.CategoryAll {
		return true
	}
	if a.Category == "" {
		return false
	}
	return a.Category == category
}

func searchableText(a model.Article) string {
	return strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
}
