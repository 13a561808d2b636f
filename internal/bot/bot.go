// Package bot is the Telegram front-end: one reading session per chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"news_reader/internal/article"
	"news_reader/internal/config"
	"news_reader/internal/model"
	"news_reader/internal/notify"
	"news_reader/internal/refresh"
	"news_reader/internal/session"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Refresher triggers an immediate article refresh.
type Refresher interface {
	Refresh(ctx context.Context) (refresh.Stats, error)
}

// Bot is the Telegram bot that handles user commands and delivers
// notifications.
type Bot struct {
	api       telegramAPI
	store     *article.Store
	refresher Refresher
	cfg       *config.Config
	ids       *notify.IDGenerator
	log       *slog.Logger

	mu    sync.Mutex
	chats map[int64]*session.Session
}

// New creates a Bot with the given Telegram token. refresher may be nil,
// which disables /refresh.
func New(token string, store *article.Store, refresher Refresher, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newBot(api, store, refresher, cfg, log), nil
}

func newBot(api telegramAPI, store *article.Store, refresher Refresher, cfg *config.Config, log *slog.Logger) *Bot {
	return &Bot{
		api:       api,
		store:     store,
		refresher: refresher,
		cfg:       cfg,
		ids:       notify.NewIDGenerator(),
		log:       log,
		chats:     make(map[int64]*session.Session),
	}
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
// All chat sessions are closed on return.
func (b *Bot) Run(ctx context.Context) {
	defer b.closeSessions()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.CallbackQuery != nil {
				if !b.cfg.IsUserAllowed(update.CallbackQuery.From.ID) {
					continue
				}
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", msg.ChatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

// session returns the chat's session, creating it on first use.
func (b *Bot) session(chatID int64) *session.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.chats[chatID]; ok {
		return s
	}

	var s *session.Session
	s = session.New(b.store, b.log.With("chat_id", chatID), session.Options{
		DebounceQuiet:  b.cfg.SearchDebounce,
		NotifyInterval: b.cfg.NotifyInterval,
		QueueLimit:     b.cfg.NotifyQueueLimit,
		Alerter:        chatAlerter{bot: b, chatID: chatID},
		Sharer:         chatSharer{bot: b, chatID: chatID},
		IDs:            b.ids,
		OnResults: func(q model.Query, results []model.Article) {
			b.reply(chatID, FormatResults(q, results, s))
		},
	})
	b.chats[chatID] = s
	return s
}

func (b *Bot) closeSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.chats {
		s.Close()
		delete(b.chats, id)
	}
}

var (
	_ notify.Alerter = chatAlerter{}
	_ session.Sharer = chatSharer{}
)

// chatAlerter delivers notifications to one chat.
type chatAlerter struct {
	bot    *Bot
	chatID int64
}

func (a chatAlerter) Alert(_ context.Context, n model.Notification) {
	msg := tgbotapi.NewMessage(a.chatID, FormatNotification(n))
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = notificationKeyboard(n.ID)
	a.bot.send(msg)
}

// chatSharer posts a share card to one chat.
type chatSharer struct {
	bot    *Bot
	chatID int64
}

func (s chatSharer) Share(_ context.Context, req model.ShareRequest) {
	msg := tgbotapi.NewMessage(s.chatID, FormatShare(req))
	s.bot.send(msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "search":
		b.handleSearch(chatID, args)
	case "category":
		b.handleCategory(chatID, args)
	case "categories":
		b.handleCategories(chatID)
	case "list":
		b.handleList(chatID)
	case cmdLike:
		b.handleLike(chatID, args)
	case cmdBookmark:
		b.handleBookmark(chatID, args)
	case "liked":
		b.handleLiked(chatID)
	case "bookmarks":
		b.handleBookmarks(chatID)
	case "share":
		b.handleShare(ctx, chatID, args)
	case "notify":
		b.handleNotify(ctx, chatID)
	case "notifications":
		b.handleNotifications(chatID)
	case cmdDismiss:
		b.handleDismiss(chatID, args)
	case "clear":
		b.handleClear(chatID)
	case "refresh":
		b.handleRefresh(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
