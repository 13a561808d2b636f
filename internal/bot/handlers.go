package bot

import (
	"context"
	"fmt"
	"strings"

	"news_reader/internal/model"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to News Reader!

Browse the latest headlines, search them and get random article alerts.

Quick start:
1. /list — show current headlines
2. /search <words> — narrow the list down
3. /notify — turn article alerts on or off

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Browsing:
/list — show articles for the current search
/search <words> — search titles and descriptions (all words must match)
/search — clear the search
/category <name> — show only one category (All for every category)
/categories — list known categories
/refresh — fetch the latest headlines now

Articles (n is the number shown in /list):
/like <n> — like or unlike an article
/bookmark <n> — bookmark or unbookmark an article
/share <n> — get a share card for an article
/liked — show liked articles
/bookmarks — show bookmarked articles

Notifications:
/notify — turn random article alerts on or off
/notifications — show pending alerts
/dismiss <id> — dismiss one alert
/clear — dismiss all alerts`)
}

func (b *Bot) handleSearch(chatID int64, args string) {
	// Results arrive through the session's OnResults callback.
	s := b.session(chatID)
	if args == "" {
		s.CommitQuery("")
		return
	}
	s.TypeQuery(args)
}

func (b *Bot) handleCategory(chatID int64, args string) {
	s := b.session(chatID)
	if args == "" {
		b.reply(chatID, fmt.Sprintf("Current category: %s\nUsage: /category <name>|All", s.Query().Category))
		return
	}

	category := b.resolveCategory(args)
	results := s.SetCategory(category)
	b.reply(chatID, FormatResults(s.Query(), results, s))
}

// resolveCategory maps user input onto a known category name, ignoring case.
func (b *Bot) resolveCategory(name string) string {
	if strings.EqualFold(name, model.CategoryAll) {
		return model.CategoryAll
	}
	for _, c := range b.store.Categories() {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return name
}

func (b *Bot) handleCategories(chatID int64) {
	b.reply(chatID, FormatCategories(b.store.Categories(), b.session(chatID).Query().Category))
}

func (b *Bot) handleList(chatID int64) {
	s := b.session(chatID)
	b.reply(chatID, FormatResults(s.Query(), s.Results(), s))
}

// articleAt resolves a 1-based result position to an article.
func (b *Bot) articleAt(chatID int64, args, usage string) (model.Article, bool) {
	results := b.session(chatID).Results()
	idx, err := ParsePosition(args, len(results))
	if err != nil {
		b.reply(chatID, fmt.Sprintf("%v\nUsage: %s", err, usage))
		return model.Article{}, false
	}
	return results[idx], true
}

func (b *Bot) handleLike(chatID int64, args string) {
	a, ok := b.articleAt(chatID, args, "/like <n>")
	if !ok {
		return
	}
	b.toggleLike(chatID, a)
}

func (b *Bot) toggleLike(chatID int64, a model.Article) {
	liked := b.session(chatID).ToggleLike(a.URL)
	if liked {
		b.reply(chatID, fmt.Sprintf("Liked \"%s\".", a.Title))
		return
	}
	b.reply(chatID, fmt.Sprintf("Removed like from \"%s\".", a.Title))
}

func (b *Bot) handleBookmark(chatID int64, args string) {
	a, ok := b.articleAt(chatID, args, "/bookmark <n>")
	if !ok {
		return
	}
	b.toggleBookmark(chatID, a)
}

func (b *Bot) toggleBookmark(chatID int64, a model.Article) {
	bookmarked := b.session(chatID).ToggleBookmark(a.URL)
	if bookmarked {
		b.reply(chatID, fmt.Sprintf("Bookmarked \"%s\".", a.Title))
		return
	}
	b.reply(chatID, fmt.Sprintf("Removed bookmark from \"%s\".", a.Title))
}

func (b *Bot) handleLiked(chatID int64) {
	b.reply(chatID, FormatSaved("Liked articles", b.lookupAll(b.session(chatID).Liked()),
		"You have not liked anything yet. Use /like <n>."))
}

func (b *Bot) handleBookmarks(chatID int64) {
	b.reply(chatID, FormatSaved("Bookmarks", b.lookupAll(b.session(chatID).Bookmarked()),
		"You have no bookmarks yet. Use /bookmark <n>."))
}

// lookupAll resolves URLs against the current batch. URLs that left the
// batch are kept with the URL as title.
func (b *Bot) lookupAll(urls []string) []model.Article {
	out := make([]model.Article, 0, len(urls))
	for _, u := range urls {
		a, ok := b.store.Lookup(u)
		if !ok {
			a = model.Article{URL: u, Title: u}
		}
		out = append(out, a)
	}
	return out
}

func (b *Bot) handleShare(ctx context.Context, chatID int64, args string) {
	a, ok := b.articleAt(chatID, args, "/share <n>")
	if !ok {
		return
	}
	if err := b.session(chatID).Share(ctx, a.URL); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to share: %v", err))
	}
}

func (b *Bot) handleNotify(ctx context.Context, chatID int64) {
	if b.session(chatID).ToggleNotifications(ctx) {
		b.reply(chatID, fmt.Sprintf("Notifications on. You will get a random article every %s.", b.cfg.NotifyInterval))
		return
	}
	b.reply(chatID, "Notifications off.")
}

func (b *Bot) handleNotifications(chatID int64) {
	b.reply(chatID, FormatNotificationList(b.session(chatID).Notifications()))
}

func (b *Bot) handleDismiss(chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /dismiss <id>")
		return
	}
	b.dismiss(chatID, id)
}

func (b *Bot) dismiss(chatID, id int64) {
	if !b.session(chatID).Dismiss(id) {
		b.reply(chatID, fmt.Sprintf("Notification %d not found.", id))
		return
	}
	b.reply(chatID, fmt.Sprintf("Notification %d dismissed.", id))
}

func (b *Bot) handleClear(chatID int64) {
	b.session(chatID).ClearNotifications()
	b.reply(chatID, "All notifications dismissed.")
}

func (b *Bot) handleRefresh(ctx context.Context, chatID int64) {
	if b.refresher == nil {
		b.reply(chatID, "Refreshing is not available.")
		return
	}
	stats, err := b.refresher.Refresh(ctx)
	if err != nil {
		b.log.Error("refresh from chat", "chat_id", chatID, "error", err)
		b.reply(chatID, "Refresh failed. Try again later.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Loaded %d articles (%d dropped).", stats.Loaded, stats.Dropped))
}

// notificationArticle finds the article of a queued notification.
func (b *Bot) notificationArticle(chatID, id int64) (model.Article, bool) {
	for _, n := range b.session(chatID).Notifications() {
		if n.ID == id {
			return n.Article, true
		}
	}
	return model.Article{}, false
}
