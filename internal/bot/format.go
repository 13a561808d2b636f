package bot

import (
	"fmt"
	"strings"

	"news_reader/internal/model"
)

// maxListed caps how many articles one message lists.
const maxListed = 10

const maxDescription = 300

// markState reports per-article interaction flags for display.
type markState interface {
	IsLiked(url string) bool
	IsBookmarked(url string) bool
}

// FormatResults formats the visible articles for a query. Positions match the
// numbers accepted by /like, /bookmark and /share.
func FormatResults(q model.Query, results []model.Article, marks markState) string {
	var b strings.Builder
	header := "Articles"
	if q.Text != "" {
		header = fmt.Sprintf("Results for %q", q.Text)
	}
	category := q.Category
	if category == "" {
		category = model.CategoryAll
	}
	fmt.Fprintf(&b, "%s in %s (%d):\n", header, category, len(results))

	if len(results) == 0 {
		b.WriteString("\nNo articles match. Try /search with fewer words or /category All.")
		return b.String()
	}

	for i, a := range results {
		if i == maxListed {
			fmt.Fprintf(&b, "\n...and %d more. Narrow the list with /search.", len(results)-maxListed)
			break
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, a.Title)
		if a.Category != "" {
			fmt.Fprintf(&b, " [%s]", a.Category)
		}
		if marks != nil {
			if marks.IsLiked(a.URL) {
				b.WriteString(" (liked)")
			}
			if marks.IsBookmarked(a.URL) {
				b.WriteString(" (bookmarked)")
			}
		}
		fmt.Fprintf(&b, "\n   %s\n", a.URL)
	}
	return b.String()
}

// FormatNotification formats a notification as a Telegram message.
func FormatNotification(n model.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Notification #%d", n.ID)
	if n.Article.Source != "" {
		fmt.Fprintf(&b, " [%s]", n.Article.Source)
	}
	b.WriteString("\n\n")
	b.WriteString(n.Article.Title)
	if desc := truncate(n.Article.Description, maxDescription); desc != "" {
		b.WriteString("\n\n")
		b.WriteString(desc)
	}
	if n.Article.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(n.Article.URL)
	}
	return b.String()
}

// FormatNotificationList formats the pending notifications.
func FormatNotificationList(list []model.Notification) string {
	if len(list) == 0 {
		return "No pending notifications. Use /notify to turn alerts on."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Pending notifications (%d):\n", len(list))
	for _, n := range list {
		fmt.Fprintf(&b, "\n#%d %s (%s)", n.ID, n.Article.Title, n.CreatedAt.UTC().Format("15:04:05"))
	}
	b.WriteString("\n\nUse /dismiss <id> or /clear.")
	return b.String()
}

// FormatShare formats a share card.
func FormatShare(req model.ShareRequest) string {
	var b strings.Builder
	b.WriteString(req.Title)
	if req.Text != "" {
		b.WriteString("\n")
		b.WriteString(truncate(req.Text, maxDescription))
	}
	b.WriteString("\n")
	b.WriteString(req.URL)
	return b.String()
}

// FormatSaved formats liked or bookmarked articles.
func FormatSaved(title string, articles []model.Article, empty string) string {
	if len(articles) == 0 {
		return empty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):\n", title, len(articles))
	for _, a := range articles {
		fmt.Fprintf(&b, "\n%s\n   %s\n", a.Title, a.URL)
	}
	return b.String()
}

// FormatCategories lists the category selector options, marking the active one.
func FormatCategories(categories []string, current string) string {
	if current == "" {
		current = model.CategoryAll
	}
	var b strings.Builder
	b.WriteString("Categories:\n")
	for _, c := range append([]string{model.CategoryAll}, categories...) {
		marker := "  "
		if c == current {
			marker = "> "
		}
		fmt.Fprintf(&b, "\n%s%s", marker, c)
	}
	b.WriteString("\n\nUse /category <name> to switch.")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
