package publisher

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/linanwx/autobot/cron"
)

const telegramMaxMessageLength = 4096

// TelegramPublisher posts to a Telegram chat through the Bot API. Post
// markdown is sent as Telegram HTML.
type TelegramPublisher struct {
	b      *bot.Bot
	chatID int64
}

// NewTelegram creates a Telegram publisher. Extra bot options are passed
// through, e.g. bot.WithServerURL in tests.
func NewTelegram(token string, chatID int64, opts ...bot.Option) (*TelegramPublisher, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram bot creation failed: %w", err)
	}
	return &TelegramPublisher{b: b, chatID: chatID}, nil
}

func (p *TelegramPublisher) Platform() string { return "telegram" }

func (p *TelegramPublisher) Publish(ctx context.Context, post cron.Post) error {
	for _, chunk := range splitMessage(post.Content, telegramMaxMessageLength) {
		_, err := p.b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    p.chatID,
			Text:      telegramHTML(chunk),
			ParseMode: models.ParseModeHTML,
		})
		if err == nil {
			continue
		}
		// Retry unformatted; Telegram rejects HTML it cannot parse.
		if _, err := p.b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: p.chatID,
			Text:   chunk,
		}); err != nil {
			return fmt.Errorf("telegram send error: %w", err)
		}
	}
	return nil
}
