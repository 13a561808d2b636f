package article

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"news_reader/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		raw         []model.RawArticle
		want        []model.Article
		wantDropped int
	}{
		{
			name: "complete record",
			raw: []model.RawArticle{{
				Source:      model.RawSource{Name: "Wire"},
				Author:      "Jane",
				Title:       " Breaking ",
				Description: "desc",
				URL:         "https://a.example/1",
				URLToImage:  "https://a.example/1.png",
				PublishedAt: "2024-05-01T10:00:00Z",
				Content:     "body",
				Category:    "business",
			}},
			want: []model.Article{{
				URL:         "https://a.example/1",
				Title:       "Breaking",
				Description: "desc",
				Content:     "body",
				Category:    "business",
				Source:      "Wire",
				Author:      "Jane",
				ImageURL:    "https://a.example/1.png",
				PublishedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			}},
		},
		{
			name: "missing optional fields tolerated",
			raw:  []model.RawArticle{{Title: "Only title", URL: "u1"}},
			want: []model.Article{{URL: "u1", Title: "Only title"}},
		},
		{
			name: "unparseable date left zero",
			raw:  []model.RawArticle{{Title: "T", URL: "u1", PublishedAt: "yesterday"}},
			want: []model.Article{{URL: "u1", Title: "T"}},
		},
		{
			name: "missing url dropped",
			raw: []model.RawArticle{
				{Title: "No url"},
				{Title: "Kept", URL: "u2"},
			},
			want:        []model.Article{{URL: "u2", Title: "Kept"}},
			wantDropped: 1,
		},
		{
			name: "missing and removed titles dropped",
			raw: []model.RawArticle{
				{URL: "u1"},
				{URL: "u2", Title: "[Removed]"},
			},
			want:        []model.Article{},
			wantDropped: 2,
		},
		{
			name: "duplicate url keeps first",
			raw: []model.RawArticle{
				{URL: "u1", Title: "First"},
				{URL: "u1", Title: "Second"},
			},
			want:        []model.Article{{URL: "u1", Title: "First"}},
			wantDropped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := Normalize(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDropped, len(dropped)); diff != "" {
				t.Errorf("dropped count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeErrorKinds(t *testing.T) {
	_, dropped := Normalize([]model.RawArticle{
		{Title: "no url"},
		{URL: "u1", Title: "a"},
		{URL: "u1", Title: "b"},
	})
	if len(dropped) != 2 {
		t.Fatalf("expected 2 dropped, got %d", len(dropped))
	}
	if !errors.Is(dropped[0], ErrMalformedArticle) {
		t.Errorf("expected ErrMalformedArticle, got %v", dropped[0])
	}
	if !errors.Is(dropped[1], ErrDuplicateArticle) {
		t.Errorf("expected ErrDuplicateArticle, got %v", dropped[1])
	}
}

func TestStoreLoadReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.Load([]model.RawArticle{
		{URL: "u1", Title: "One"},
		{URL: "u2", Title: "Two"},
	})
	s.Load([]model.RawArticle{{URL: "u3", Title: "Three"}})

	got := s.Snapshot()
	want := []model.Article{{URL: "u3", Title: "Three"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Lookup("u1"); ok {
		t.Error("u1 should be gone after second load")
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Article{{URL: "u1", Title: "One"}})

	snap := s.Snapshot()
	snap[0].Title = "mutated"

	a, ok := s.Lookup("u1")
	if !ok {
		t.Fatal("u1 not found")
	}
	if diff := cmp.Diff("One", a.Title); diff != "" {
		t.Errorf("store mutated through snapshot (-want +got):\n%s", diff)
	}
}

func TestStoreRandom(t *testing.T) {
	s := NewStore()
	if _, ok := s.Random(nil); ok {
		t.Fatal("expected ok=false on empty store")
	}

	s.Replace([]model.Article{{URL: "u1"}, {URL: "u2"}, {URL: "u3"}})
	r := rand.New(rand.NewPCG(1, 2))
	seen := make(map[string]bool)
	for range 200 {
		a, ok := s.Random(r)
		if !ok {
			t.Fatal("expected ok=true on non-empty store")
		}
		seen[a.URL] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all 3 articles to be sampled, got %v", seen)
	}

	// Shrinking the batch must never produce an out-of-range pick.
	s.Replace([]model.Article{{URL: "only"}})
	for range 50 {
		a, _ := s.Random(r)
		if a.URL != "only" {
			t.Fatalf("expected only, got %s", a.URL)
		}
	}
}

func TestStoreCategories(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Article{
		{URL: "u1", Category: "sports"},
		{URL: "u2"},
		{URL: "u3", Category: "business"},
		{URL: "u4", Category: "sports"},
	})
	want := []string{"business", "sports"}
	if diff := cmp.Diff(want, s.Categories()); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}
}
