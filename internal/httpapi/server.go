// Package httpapi exposes one reading session over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"news_reader/internal/article"
	"news_reader/internal/model"
	"news_reader/internal/session"
)

// Server serves the article list, interaction toggles and notifications of a
// single session.
type Server struct {
	session *session.Session
	store   *article.Store
	log     *slog.Logger
}

// New creates a Server with its own session over store. Notifications are
// logged unless opts sets an Alerter.
func New(store *article.Store, log *slog.Logger, opts session.Options) *Server {
	s := &Server{store: store, log: log}
	if opts.Alerter == nil {
		opts.Alerter = logAlerter{log: log}
	}
	s.session = session.New(store, log, opts)
	return s
}

// Close stops the session's timers.
func (s *Server) Close() {
	s.session.Close()
}

type logAlerter struct {
	log *slog.Logger
}

func (a logAlerter) Alert(_ context.Context, n model.Notification) {
	a.log.Info("notification", "id", n.ID, "title", n.Article.Title, "url", n.Article.URL)
}

// Handler returns the HTTP routes. Notification timers started through the
// API run under ctx.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/articles", s.handleArticles)
	r.Post("/search", s.handleSearch)
	r.Get("/categories", s.handleCategories)

	r.Route("/likes", func(r chi.Router) {
		r.Get("/", s.handleList(s.session.Liked))
		r.Post("/", s.handleToggle(s.session.ToggleLike, "liked"))
	})
	r.Route("/bookmarks", func(r chi.Router) {
		r.Get("/", s.handleList(s.session.Bookmarked))
		r.Post("/", s.handleToggle(s.session.ToggleBookmark, "bookmarked"))
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.handleNotifications)
		r.Delete("/", s.handleClearNotifications)
		r.Post("/toggle", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.session.ToggleNotifications(ctx)})
		})
		r.Delete("/{id}", s.handleDismiss)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type articleJSON struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Category    string     `json:"category,omitempty"`
	Source      string     `json:"source,omitempty"`
	Author      string     `json:"author,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Liked       bool       `json:"liked"`
	Bookmarked  bool       `json:"bookmarked"`
}

func (s *Server) toJSON(a model.Article) articleJSON {
	out := articleJSON{
		URL:         a.URL,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Category:    a.Category,
		Source:      a.Source,
		Author:      a.Author,
		ImageURL:    a.ImageURL,
		Liked:       s.session.IsLiked(a.URL),
		Bookmarked:  s.session.IsBookmarked(a.URL),
	}
	if !a.PublishedAt.IsZero() {
		t := a.PublishedAt
		out.PublishedAt = &t
	}
	return out
}

type articlesResponse struct {
	Query    string        `json:"query"`
	Category string        `json:"category"`
	Count    int           `json:"count"`
	Articles []articleJSON `json:"articles"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "articles": s.store.Len()})
}

// handleArticles commits q and category immediately when present and
// returns the visible articles.
func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if params.Has("category") {
		s.session.SetCategory(params.Get("category"))
	}
	var results []model.Article
	if params.Has("q") {
		results = s.session.CommitQuery(params.Get("q"))
	} else {
		results = s.session.Results()
	}

	q := s.session.Query()
	resp := articlesResponse{
		Query:    q.Text,
		Category: q.Category,
		Count:    len(results),
		Articles: make([]articleJSON, 0, len(results)),
	}
	for _, a := range results {
		resp.Articles = append(resp.Articles, s.toJSON(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSearch feeds typed input through the debouncer.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.session.TypeQuery(req.Text)
	writeJSON(w, http.StatusAccepted, map[string]bool{"pending": s.session.PendingQuery()})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": append([]string{model.CategoryAll}, s.store.Categories()...),
		"current":    s.session.Query().Category,
	})
}

func (s *Server) handleList(list func() []string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"urls": nonNil(list())})
	}
}

func (s *Server) handleToggle(toggle func(string) bool, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, errors.New("url is required"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"url": req.URL, field: toggle(req.URL)})
	}
}

type notificationJSON struct {
	ID        int64       `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Article   articleJSON `json:"article"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	list := s.session.Notifications()
	out := make([]notificationJSON, 0, len(list))
	for _, n := range list {
		out = append(out, notificationJSON{ID: n.ID, CreatedAt: n.CreatedAt, Article: s.toJSON(n.Article)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":       s.session.NotificationsEnabled(),
		"notifications": out,
	})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}
	if !s.session.Dismiss(id) {
		writeError(w, http.StatusNotFound, errors.New("notification not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, _ *http.Request) {
	s.session.ClearNotifications()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
