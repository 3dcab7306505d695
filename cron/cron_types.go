// Package cron schedules social posts for later delivery and persists them
// to a yaml store.
package cron

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/linanwx/autobot/logger"
)

const (
	PostKindCron = "cron"
	PostKindAt   = "at"
)

// Post is a scheduled social media post.
type Post struct {
	ID        string    `json:"id" yaml:"id"`
	Platform  string    `json:"platform" yaml:"platform"`
	Content   string    `json:"content" yaml:"content"`
	Kind      string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Expr      string    `json:"expr,omitempty" yaml:"expr,omitempty"`
	AtTime    time.Time `json:"at_time,omitempty" yaml:"at_time,omitempty"`
	Enabled   bool      `json:"enabled" yaml:"enabled"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// PublishFunc delivers a post when its schedule fires.
type PublishFunc func(post Post) error

// Scheduler owns the scheduled posts and fires them through a PublishFunc.
type Scheduler struct {
	cron      *robfigcron.Cron
	publish   PublishFunc
	posts     map[string]Post
	cancels   map[string]func()
	storePath string
	log       *slog.Logger
	mu        sync.Mutex
}

// NewScheduler creates a scheduler backed by storePath. An empty path keeps
// posts in memory only.
func NewScheduler(storePath string, publish PublishFunc, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      robfigcron.New(),
		publish:   publish,
		posts:     make(map[string]Post),
		cancels:   make(map[string]func()),
		storePath: strings.TrimSpace(storePath),
		log:       logger.OrDiscard(log),
	}
}
