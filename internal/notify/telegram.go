package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends reminders to a single chat through the Bot API. The bot
// client is created on first use since construction calls getMe.
type Telegram struct {
	token    string
	chatID   int64
	endpoint string

	mu  sync.Mutex
	bot *tg.BotAPI
}

// NewTelegram creates a sender for chatID. An empty endpoint uses the
// public Bot API.
func NewTelegram(token string, chatID int64, endpoint string) *Telegram {
	if endpoint == "" {
		endpoint = tg.APIEndpoint
	}
	return &Telegram{token: token, chatID: chatID, endpoint: endpoint}
}

func (t *Telegram) client() (*tg.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tg.NewBotAPIWithAPIEndpoint(t.token, t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	bot.Debug = false
	t.bot = bot
	return bot, nil
}

func (t *Telegram) Notify(ctx context.Context, title, description string) error {
	if err := ctx.Err(); err != nil {
		return &NotificationError{Backend: "telegram", Err: err}
	}

	bot, err := t.client()
	if err != nil {
		return &NotificationError{Backend: "telegram", Err: err}
	}

	m := tg.NewMessage(t.chatID, formatMessage(title, description))
	m.ParseMode = tg.ModeHTML
	m.DisableWebPagePreview = true

	if _, err := bot.Request(m); err != nil {
		return &NotificationError{Backend: "telegram", Err: err}
	}
	return nil
}

func formatMessage(title, description string) string {
	var sb strings.Builder
	sb.WriteString("⏰ <b>")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</b>")
	if description != "" {
		sb.WriteString("\n\n")
		sb.WriteString(html.EscapeString(description))
	}
	return sb.String()
}
