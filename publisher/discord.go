package publisher

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/linanwx/autobot/cron"
)

const discordMaxMessageLength = 2000

// DiscordPublisher posts to a Discord channel over the REST API. No gateway
// connection is opened.
type DiscordPublisher struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscord creates a Discord publisher for a bot token.
func NewDiscord(token, channelID string) (*DiscordPublisher, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel id is required")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session creation failed: %w", err)
	}
	return &DiscordPublisher{session: dg, channelID: channelID}, nil
}

func (p *DiscordPublisher) Platform() string { return "discord" }

func (p *DiscordPublisher) Publish(ctx context.Context, post cron.Post) error {
	for _, chunk := range splitMessage(post.Content, discordMaxMessageLength) {
		if _, err := p.session.ChannelMessageSend(p.channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("discord send error: %w", err)
		}
	}
	return nil
}
