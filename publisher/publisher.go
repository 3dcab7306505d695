// Package publisher delivers scheduled posts to social platforms.
package publisher

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/linanwx/autobot/cron"
	"github.com/linanwx/autobot/logger"
)

// Publisher delivers a post to one platform.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, post cron.Post) error
}

// Registry maps platform names to publishers. Platforms without a
// registered publisher fall back to a log-only publisher.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Publisher
	fallback Publisher
}

// NewRegistry creates a registry whose fallback logs posts to log.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		byName:   make(map[string]Publisher),
		fallback: &LogPublisher{log: logger.OrDiscard(log)},
	}
}

// Register adds or replaces the publisher for its platform.
func (r *Registry) Register(p Publisher) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[normalizePlatform(p.Platform())] = p
}

// Get returns the publisher for platform, or the fallback.
func (r *Registry) Get(platform string) Publisher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byName[normalizePlatform(platform)]; ok {
		return p
	}
	return r.fallback
}

// Publish routes post to its platform's publisher.
func (r *Registry) Publish(ctx context.Context, post cron.Post) error {
	return r.Get(post.Platform).Publish(ctx, post)
}

// LogPublisher records posts in the log instead of delivering them.
type LogPublisher struct {
	log *slog.Logger
}

func (p *LogPublisher) Platform() string { return "log" }

func (p *LogPublisher) Publish(_ context.Context, post cron.Post) error {
	p.log.Info("post ready (no publisher for platform)", "id", post.ID, "platform", post.Platform, "chars", len(post.Content))
	return nil
}

func normalizePlatform(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// splitMessage breaks text into chunks of at most limit runes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		if len(cur)+len(r) > limit {
			flush()
		}
		for len(r) > limit {
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}
		cur = append(cur, r...)
	}
	flush()
	return chunks
}
