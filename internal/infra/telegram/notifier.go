package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier pushes moderation alerts to the staff chat. A nil Notifier is a
// valid no-op sink, so callers never have to branch on configuration.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewNotifier(token string, staffChatID int64) (*Notifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if staffChatID == 0 {
		return nil, fmt.Errorf("telegram staff chat id is required")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Notifier{api: api, chatID: staffChatID}, nil
}

func (n *Notifier) ListingSubmitted(listingID, title, city string) error {
	if n == nil || n.api == nil {
		return nil
	}

	text := fmt.Sprintf("New listing pending review\n%s — %s\nid: %s", title, city, listingID)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send moderation alert: %w", err)
	}

	return nil
}
