package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"news_reader/internal/article"
	"news_reader/internal/model"
	"news_reader/internal/notify"
)

type resultRecorder struct {
	mu      sync.Mutex
	queries []model.Query
	counts  []int
}

func (r *resultRecorder) record(q model.Query, results []model.Article) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	r.counts = append(r.counts, len(results))
}

func (r *resultRecorder) get() ([]model.Query, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Query(nil), r.queries...), append([]int(nil), r.counts...)
}

type mockSharer struct {
	mu   sync.Mutex
	reqs []model.ShareRequest
}

func (m *mockSharer) Share(_ context.Context, req model.ShareRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
}

func newTestStore() *article.Store {
	s := article.NewStore()
	s.Replace([]model.Article{
		{URL: "u1", Title: "Cats", Description: "about cats", Category: "pets"},
		{URL: "u2", Title: "Dogs", Description: "about dogs", Category: "pets"},
		{URL: "u3", Title: "Stocks", Description: "market news", Category: "business"},
		{URL: "u4", Title: "Untagged cat story"},
	})
	return s
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s := New(newTestStore(), slog.New(slog.NewTextHandler(io.Discard, nil)), opts)
	t.Cleanup(s.Close)
	return s
}

func resultURLs(articles []model.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.URL)
	}
	return out
}

func TestSessionDefaults(t *testing.T) {
	s := newTestSession(t, Options{})

	want := model.Query{Category: model.CategoryAll}
	if diff := cmp.Diff(want, s.Query()); diff != "" {
		t.Errorf("Query() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"u1", "u2", "u3", "u4"}, resultURLs(s.Results())); diff != "" {
		t.Errorf("Results() mismatch (-want +got):\n%s", diff)
	}
	if s.NotificationsEnabled() {
		t.Error("notifications should start disabled")
	}
}

func TestSessionTypeQueryDebounced(t *testing.T) {
	rec := &resultRecorder{}
	s := newTestSession(t, Options{DebounceQuiet: 30 * time.Millisecond, OnResults: rec.record})

	s.TypeQuery("c")
	s.TypeQuery("ca")
	s.TypeQuery("cat")

	if diff := cmp.Diff("", s.Query().Text); diff != "" {
		t.Errorf("query committed too early (-want +got):\n%s", diff)
	}

	time.Sleep(150 * time.Millisecond)

	queries, counts := rec.get()
	wantQueries := []model.Query{{Text: "cat", Category: model.CategoryAll}}
	if diff := cmp.Diff(wantQueries, queries); diff != "" {
		t.Errorf("committed queries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, counts); diff != "" {
		t.Errorf("result counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"u1", "u4"}, resultURLs(s.Results())); diff != "" {
		t.Errorf("Results() mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionCommitQueryAndCategory(t *testing.T) {
	s := newTestSession(t, Options{DebounceQuiet: time.Hour})

	got := s.CommitQuery("cat")
	if diff := cmp.Diff([]string{"u1", "u4"}, resultURLs(got)); diff != "" {
		t.Errorf("CommitQuery() mismatch (-want +got):\n%s", diff)
	}
	if s.PendingQuery() {
		t.Error("nothing should be pending after CommitQuery")
	}

	got = s.SetCategory("pets")
	if diff := cmp.Diff([]string{"u1"}, resultURLs(got)); diff != "" {
		t.Errorf("SetCategory() mismatch (-want +got):\n%s", diff)
	}

	got = s.SetCategory("")
	if diff := cmp.Diff(model.CategoryAll, s.Query().Category); diff != "" {
		t.Errorf("empty category mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"u1", "u4"}, resultURLs(got)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionCloseDiscardsPendingQuery(t *testing.T) {
	rec := &resultRecorder{}
	s := New(newTestStore(), slog.New(slog.NewTextHandler(io.Discard, nil)),
		Options{DebounceQuiet: 30 * time.Millisecond, OnResults: rec.record})

	s.TypeQuery("dogs")
	s.Close()
	s.Close()
	time.Sleep(120 * time.Millisecond)

	if queries, _ := rec.get(); len(queries) != 0 {
		t.Errorf("expected no commits after Close, got %v", queries)
	}
	if s.ToggleNotifications(context.Background()) {
		t.Error("closed session must not enable notifications")
	}
}

func TestSessionInteractions(t *testing.T) {
	s := newTestSession(t, Options{})

	if !s.ToggleLike("u1") {
		t.Fatal("ToggleLike(u1) = false; want true")
	}
	if !s.ToggleBookmark("u2") {
		t.Fatal("ToggleBookmark(u2) = false; want true")
	}

	if diff := cmp.Diff([]string{"u1"}, s.Liked()); diff != "" {
		t.Errorf("Liked() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"u2"}, s.Bookmarked()); diff != "" {
		t.Errorf("Bookmarked() mismatch (-want +got):\n%s", diff)
	}
	if !s.IsLiked("u1") || s.IsBookmarked("u1") {
		t.Error("like and bookmark sets must be independent")
	}

	if s.ToggleLike("u1") {
		t.Error("second toggle should unlike")
	}
}

func TestSessionTogglesOutliveBatch(t *testing.T) {
	s := newTestSession(t, Options{})

	s.ToggleLike("u1")
	s.ToggleBookmark("u1")
	s.store.Replace([]model.Article{{URL: "u9", Title: "Fresh"}})

	if s.ToggleLike("u1") {
		t.Error("ToggleLike(u1) after replace should unlike")
	}
	if s.ToggleBookmark("u1") {
		t.Error("ToggleBookmark(u1) after replace should remove the bookmark")
	}
	if diff := cmp.Diff([]string{}, s.Liked()); diff != "" {
		t.Errorf("Liked() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{}, s.Bookmarked()); diff != "" {
		t.Errorf("Bookmarked() mismatch (-want +got):\n%s", diff)
	}

	if !s.ToggleLike("never-loaded") {
		t.Error("an identity outside the store can still be liked")
	}
}

func TestSessionNotifications(t *testing.T) {
	alerts := make(chan model.Notification, 4)
	s := newTestSession(t, Options{
		NotifyInterval: 40 * time.Millisecond,
		Alerter: notify.AlerterFunc(func(_ context.Context, n model.Notification) {
			alerts <- n
		}),
	})

	if !s.ToggleNotifications(context.Background()) {
		t.Fatal("expected notifications enabled")
	}

	var n model.Notification
	select {
	case n = <-alerts:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	if s.ToggleNotifications(context.Background()) {
		t.Fatal("expected notifications disabled")
	}

	list := s.Notifications()
	if len(list) == 0 || list[0].ID != n.ID {
		t.Fatalf("expected notification %d queued, got %v", n.ID, list)
	}
	if !s.Dismiss(n.ID) {
		t.Error("Dismiss should remove the notification")
	}
	if s.Dismiss(n.ID) {
		t.Error("second Dismiss should be a no-op")
	}
	s.ClearNotifications()
	if diff := cmp.Diff(0, len(s.Notifications())); diff != "" {
		t.Errorf("queue length mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionShare(t *testing.T) {
	sharer := &mockSharer{}
	s := newTestSession(t, Options{Sharer: sharer})

	if err := s.Share(context.Background(), "u3"); err != nil {
		t.Fatalf("Share: %v", err)
	}
	want := []model.ShareRequest{{Title: "Stocks", Text: "market news", URL: "u3"}}
	if diff := cmp.Diff(want, sharer.reqs); diff != "" {
		t.Errorf("share requests mismatch (-want +got):\n%s", diff)
	}

	if err := s.Share(context.Background(), "nope"); !errors.Is(err, ErrUnknownArticle) {
		t.Errorf("expected ErrUnknownArticle, got %v", err)
	}

	noSharer := newTestSession(t, Options{})
	if err := noSharer.Share(context.Background(), "u1"); !errors.Is(err, ErrShareUnsupported) {
		t.Errorf("expected ErrShareUnsupported, got %v", err)
	}
}
