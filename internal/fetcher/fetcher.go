// Package fetcher downloads raw article records from NewsAPI and RSS sources.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"news_reader/internal/config"
	"news_reader/internal/model"
)

const maxBodySize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result holds the outcome of fetching every configured source.
// Articles keep source order; a failed source contributes only an error.
type Result struct {
	Articles []model.RawArticle
	Errors   []error
}

// Fetcher downloads and decodes article sources.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
	policy  *bluemonday.Policy
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
		policy:  bluemonday.StrictPolicy(),
	}
}

// newsAPIResponse is the top-headlines envelope.
type newsAPIResponse struct {
	Status       string             `json:"status"`
	TotalResults int                `json:"totalResults"`
	Articles     []model.RawArticle `json:"articles"`
	Code         string             `json:"code"`
	Message      string             `json:"message"`
}

// FetchAll fetches every source concurrently.
func (f *Fetcher) FetchAll(ctx context.Context, sources []config.Source) Result {
	perSource := make([][]model.RawArticle, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			articles, err := f.Fetch(ctx, src)
			if err != nil {
				errs[i] = fmt.Errorf("source %s: %w", src.Name, err)
				return
			}
			perSource[i] = articles
		}()
	}
	wg.Wait()

	var res Result
	for i := range sources {
		if errs[i] != nil {
			res.Errors = append(res.Errors, errs[i])
			continue
		}
		res.Articles = append(res.Articles, perSource[i]...)
	}
	return res
}

// Fetch downloads one source and returns its raw records.
func (f *Fetcher) Fetch(ctx context.Context, src config.Source) ([]model.RawArticle, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	switch src.Type {
	case config.SourceNewsAPI:
		return f.FetchNewsAPI(ctx, src)
	case config.SourceRSS:
		return f.FetchRSS(ctx, src)
	default:
		return nil, fmt.Errorf("unknown source type %q", src.Type)
	}
}

// FetchNewsAPI requests top headlines and stamps the source category on each
// record that does not carry its own.
func (f *Fetcher) FetchNewsAPI(ctx context.Context, src config.Source) ([]model.RawArticle, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	if src.Country != "" {
		q.Set("country", src.Country)
	}
	if src.Category != "" {
		q.Set("category", src.Category)
	}
	u.RawQuery = q.Encode()

	// The key travels in a header so it never shows up in a url.Error.
	body, err := f.get(ctx, u.String(), http.Header{"X-Api-Key": {src.APIKey}})
	if err != nil {
		return nil, err
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", resp.Code, resp.Message)
	}

	for i := range resp.Articles {
		if resp.Articles[i].Category == "" {
			resp.Articles[i].Category = src.Category
		}
	}
	return resp.Articles, nil
}

// FetchRSS parses a feed and maps its items to raw records with HTML stripped.
func (f *Fetcher) FetchRSS(ctx context.Context, src config.Source) ([]model.RawArticle, error) {
	body, err := f.get(ctx, src.URL, nil)
	if err != nil {
		return nil, err
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	sourceName := src.Name
	if sourceName == "" {
		sourceName = feed.Title
	}

	articles := make([]model.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		raw := model.RawArticle{
			Source:      model.RawSource{Name: sourceName},
			Title:       f.StripHTML(item.Title),
			Description: f.StripHTML(item.Description),
			Content:     f.StripHTML(item.Content),
			URL:         item.Link,
			Category:    src.Category,
		}
		if item.Author != nil {
			raw.Author = item.Author.Name
		}
		if item.Image != nil {
			raw.URLToImage = item.Image.URL
		}
		if item.PublishedParsed != nil {
			raw.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		articles = append(articles, raw)
	}
	return articles, nil
}

// StripHTML removes all markup and collapses whitespace.
func (f *Fetcher) StripHTML(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(f.policy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

func (f *Fetcher) get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", "NewsReader/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
