package automation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linanwx/autobot/logger"
	"github.com/linanwx/autobot/provider"
)

const (
	defaultPostDrafts  = 3
	postSystemPrompt   = "You write social media posts. Reply with the posts only, one per line, no numbering, no hashtags unless natural for the platform."
	postDraftMaxTokens = 600
)

// PostQueue accepts one-shot posts. *cron.Scheduler satisfies it.
type PostQueue interface {
	AddAt(platform, content string, at time.Time) (string, error)
}

// CronPosts drafts posts with the AI client and queues them spaced apart.
type CronPosts struct {
	queue   PostQueue
	ai      provider.Provider
	spacing time.Duration
	drafts  int
	log     *slog.Logger
	now     func() time.Time
}

// NewCronPosts creates a post scheduler. ai may be nil, in which case no
// content can be generated.
func NewCronPosts(queue PostQueue, ai provider.Provider, spacing time.Duration, log *slog.Logger) *CronPosts {
	if spacing <= 0 {
		spacing = time.Hour
	}
	return &CronPosts{
		queue:   queue,
		ai:      ai,
		spacing: spacing,
		drafts:  defaultPostDrafts,
		log:     logger.OrDiscard(log),
		now:     time.Now,
	}
}

// Schedule queues AI drafted posts for platform. Without aiContent there is
// nothing to schedule.
func (p *CronPosts) Schedule(ctx context.Context, platform string, aiContent bool) (int, error) {
	if !aiContent {
		return 0, nil
	}
	if p.ai == nil {
		p.log.Warn("AI content requested but no AI client is configured", "platform", platform)
		return 0, nil
	}

	resp, err := p.ai.Chat(ctx, &provider.Request{
		System:    postSystemPrompt,
		Prompt:    fmt.Sprintf("Write %d short posts for %s.", p.drafts, strings.TrimSpace(platform)),
		MaxTokens: postDraftMaxTokens,
	})
	if err != nil {
		return 0, fmt.Errorf("drafting posts: %w", err)
	}

	drafts := splitDrafts(resp.Content, p.drafts)
	start := p.now()
	scheduled := 0
	for i, draft := range drafts {
		at := start.Add(time.Duration(i+1) * p.spacing)
		id, err := p.queue.AddAt(platform, draft, at)
		if err != nil {
			return scheduled, fmt.Errorf("queueing post: %w", err)
		}
		p.log.Debug("post queued", "id", id, "platform", platform, "at", at)
		scheduled++
	}
	return scheduled, nil
}
