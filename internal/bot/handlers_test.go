package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"news_reader/internal/model"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		n       int
		want    int
		wantErr bool
	}{
		{name: "first", args: "1", n: 3, want: 0},
		{name: "last", args: "3", n: 3, want: 2},
		{name: "extra words ignored", args: "2 please", n: 3, want: 1},
		{name: "zero", args: "0", n: 3, wantErr: true},
		{name: "too large", args: "4", n: 3, wantErr: true},
		{name: "empty list", args: "1", n: 0, wantErr: true},
		{name: "not a number", args: "abc", n: 3, wantErr: true},
		{name: "empty", args: "", n: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePosition(tt.args, tt.n)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePosition() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIDArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    int64
		wantErr bool
	}{
		{name: "valid", args: "1736240000123", want: 1736240000123},
		{name: "with spaces", args: "  42  ", want: 42},
		{name: "empty", args: "", wantErr: true},
		{name: "not a number", args: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseIDArg() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type fakeMarks struct {
	liked, bookmarked map[string]bool
}

func (f fakeMarks) IsLiked(url string) bool      { return f.liked[url] }
func (f fakeMarks) IsBookmarked(url string) bool { return f.bookmarked[url] }

func TestFormatResults(t *testing.T) {
	articles := []model.Article{
		{URL: "https://a.example.com", Title: "Cats", Category: "pets"},
		{URL: "https://b.example.com", Title: "Untagged"},
	}

	t.Run("with marks", func(t *testing.T) {
		marks := fakeMarks{
			liked:      map[string]bool{"https://a.example.com": true},
			bookmarked: map[string]bool{"https://b.example.com": true},
		}
		got := FormatResults(model.Query{Text: "cat", Category: model.CategoryAll}, articles, marks)
		want := `Results for "cat" in All (2):

1. Cats [pets] (liked)
   https://a.example.com

2. Untagged (bookmarked)
   https://b.example.com
`
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FormatResults() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got := FormatResults(model.Query{Category: "pets"}, nil, nil)
		if !strings.HasPrefix(got, "Articles in pets (0):") {
			t.Errorf("unexpected header: %q", got)
		}
		if !strings.Contains(got, "No articles match") {
			t.Errorf("expected empty hint, got %q", got)
		}
	})

	t.Run("truncated list", func(t *testing.T) {
		many := make([]model.Article, maxListed+3)
		for i := range many {
			many[i] = model.Article{URL: "u", Title: "t"}
		}
		got := FormatResults(model.Query{}, many, nil)
		if !strings.Contains(got, "...and 3 more") {
			t.Errorf("expected overflow line, got %q", got)
		}
		if strings.Contains(got, "11. ") {
			t.Errorf("list should stop at %d entries", maxListed)
		}
	})
}

func TestFormatNotification(t *testing.T) {
	n := model.Notification{
		ID: 7,
		Article: model.Article{
			URL:         "https://news.example.com/x",
			Title:       "Headline",
			Description: strings.Repeat("a", 400),
			Source:      "Wire",
		},
	}
	got := FormatNotification(n)
	want := "Notification #7 [Wire]\n\nHeadline\n\n" + strings.Repeat("a", 300) + "...\n\nhttps://news.example.com/x"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatNotification() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatNotificationList(t *testing.T) {
	if got := FormatNotificationList(nil); !strings.Contains(got, "No pending notifications") {
		t.Errorf("unexpected empty list text: %q", got)
	}

	list := []model.Notification{
		{ID: 1, Article: model.Article{Title: "One"}, CreatedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)},
		{ID: 2, Article: model.Article{Title: "Two"}, CreatedAt: time.Date(2025, 1, 1, 9, 0, 10, 0, time.UTC)},
	}
	got := FormatNotificationList(list)
	for _, want := range []string{"Pending notifications (2)", "#1 One (09:00:00)", "#2 Two (09:00:10)"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatShare(t *testing.T) {
	got := FormatShare(model.ShareRequest{Title: "T", Text: "body", URL: "https://x"})
	if diff := cmp.Diff("T\nbody\nhttps://x", got); diff != "" {
		t.Errorf("FormatShare() mismatch (-want +got):\n%s", diff)
	}
	got = FormatShare(model.ShareRequest{Title: "T", URL: "https://x"})
	if diff := cmp.Diff("T\nhttps://x", got); diff != "" {
		t.Errorf("FormatShare() without text mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatCategories(t *testing.T) {
	got := FormatCategories([]string{"business", "pets"}, "pets")
	want := "Categories:\n\n  All\n  business\n> pets\n\nUse /category <name> to switch."
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatCategories() mismatch (-want +got):\n%s", diff)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "short", n: 10, want: "short"},
		{in: "exactly", n: 7, want: "exactly"},
		{in: "привет мир", n: 6, want: "привет..."},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, truncate(tt.in, tt.n)); diff != "" {
			t.Errorf("truncate(%q, %d) mismatch (-want +got):\n%s", tt.in, tt.n, diff)
		}
	}
}
