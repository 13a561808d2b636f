package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cmdLike     = "like"
	cmdBookmark = "bookmark"
	cmdDismiss  = "dismiss"
)

func notificationKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Like", fmt.Sprintf("%s:%d", cmdLike, id)),
			tgbotapi.NewInlineKeyboardButtonData("Bookmark", fmt.Sprintf("%s:%d", cmdBookmark, id)),
			tgbotapi.NewInlineKeyboardButtonData("Dismiss", fmt.Sprintf("%s:%d", cmdDismiss, id)),
		),
	)
}

func (b *Bot) handleCallback(_ context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	data := cb.Data
	chatID := cb.Message.Chat.ID

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return
	}

	action := parts[0]
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return
	}

	b.log.Info("callback",
		"action", action,
		"id", id,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cmdLike, cmdBookmark:
		a, ok := b.notificationArticle(chatID, id)
		if !ok {
			b.reply(chatID, fmt.Sprintf("Notification %d not found.", id))
			return
		}
		if action == cmdLike {
			b.toggleLike(chatID, a)
		} else {
			b.toggleBookmark(chatID, a)
		}
	case cmdDismiss:
		b.dismiss(chatID, id)
	}
}
