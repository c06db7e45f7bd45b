package notify

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"crypto-arbitrage-dashboard/internal/domain"
)

// TelegramSender posts the preformatted Markdown alert message to a chat.
type TelegramSender struct {
	client *bot.Bot
	chatID any
}

// NewTelegramSender builds a sender for the given bot token. chatID is
// either a numeric chat id or an @channel username.
func NewTelegramSender(token, chatID string) (*TelegramSender, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, err
	}
	s := &TelegramSender{client: b, chatID: chatID}
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		s.chatID = id
	}
	return s, nil
}

func (s *TelegramSender) Name() string {
	return "telegram"
}

func (s *TelegramSender) Send(ctx context.Context, _ domain.AlertRecord, message string) error {
	_, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    s.chatID,
		Text:      message,
		ParseMode: models.ParseModeMarkdown,
	})
	return err
}
