// Package bot implements the automation bot controller: it owns the
// configuration, the logging context and the AI client, and dispatches the
// email, post and file tasks to their capabilities.
package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/linanwx/autobot/automation"
	"github.com/linanwx/autobot/config"
	"github.com/linanwx/autobot/logger"
	"github.com/linanwx/autobot/provider"
)

// ErrRateLimited is returned by a task operation once the hourly task
// budget is used up.
var ErrRateLimited = errors.New("task budget exhausted")

// Options configures New. Every field is optional.
type Options struct {
	// Config is used verbatim when set. When nil the configuration is read
	// from the environment through Lookup.
	Config *config.Config
	// Lookup resolves environment variables, including the AI credential.
	// Defaults to config.OSLookup.
	Lookup config.LookupFunc

	// Logger is the logging context. When nil one is built from Logging and
	// closed by Bot.Close.
	Logger  *logger.Logger
	Logging logger.Config

	// Provider overrides credential resolution.
	Provider provider.Provider

	// Capabilities; nil means the placeholder implementation.
	Email automation.EmailResponder
	Posts automation.PostScheduler
	Files automation.FileCategorizer

	// Wire, when set, builds capabilities once the AI client is resolved.
	// Non-nil fields of its result replace the ones above.
	Wire func(ai provider.Provider) (Capabilities, error)
}

// Capabilities groups the task backends.
type Capabilities struct {
	Email automation.EmailResponder
	Posts automation.PostScheduler
	Files automation.FileCategorizer
}

// Bot is the automation controller. It is safe for concurrent use; the
// configuration never changes after New.
type Bot struct {
	cfg       config.Config
	log       *slog.Logger
	ownLogger *logger.Logger
	ai        provider.Provider
	limiter   *rate.Limiter

	email automation.EmailResponder
	posts automation.PostScheduler
	files automation.FileCategorizer

	started time.Time
	now     func() time.Time
}

// New builds a controller. A missing AI credential is logged and never
// fails construction.
func New(opts Options) (*Bot, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = config.OSLookup
	}

	var cfg *config.Config
	if opts.Config != nil {
		if err := opts.Config.Validate(); err != nil {
			return nil, err
		}
		c := *opts.Config
		cfg = &c
	} else {
		c, err := config.FromEnv(lookup)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	lg := opts.Logger
	var owned *logger.Logger
	if lg == nil {
		l, err := logger.New(opts.Logging)
		if err != nil {
			return nil, fmt.Errorf("setting up logging: %w", err)
		}
		lg, owned = l, l
	}

	b := &Bot{
		cfg:       *cfg,
		log:       lg.Logger,
		ownLogger: owned,
		ai:        opts.Provider,
		email:     opts.Email,
		posts:     opts.Posts,
		files:     opts.Files,
		now:       time.Now,
	}
	if b.ai == nil {
		b.ai = b.resolveProvider(lookup)
	}
	if opts.Wire != nil {
		caps, err := opts.Wire(b.ai)
		if err != nil {
			_ = owned.Close()
			return nil, fmt.Errorf("wiring integrations: %w", err)
		}
		if caps.Email != nil {
			b.email = caps.Email
		}
		if caps.Posts != nil {
			b.posts = caps.Posts
		}
		if caps.Files != nil {
			b.files = caps.Files
		}
	}
	if b.email == nil {
		b.email = automation.StubEmail{}
	}
	if b.posts == nil {
		b.posts = automation.StubPosts{}
	}
	if b.files == nil {
		b.files = automation.StubFiles{}
	}

	// Validate and FromEnv both guarantee a positive budget.
	limit := b.cfg.MaxTasksPerHour
	b.limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(limit)), limit)

	b.started = b.now()
	b.log.Info("AI Automation Bot initialized",
		"model", b.cfg.AIModel,
		"level", b.cfg.AutomationLevel,
		"ai", b.ai != nil,
	)
	return b, nil
}

func (b *Bot) resolveProvider(lookup config.LookupFunc) provider.Provider {
	p, err := provider.Resolve(b.cfg.AIModel, lookup, b.log)
	if err == nil {
		return p
	}
	if errors.Is(err, provider.ErrNoCredential) {
		b.log.Warn(fmt.Sprintf("%s API key not found. AI features will be limited.", displayName(provider.ForModel(b.cfg.AIModel))),
			"env", provider.EnvKeyFor(b.cfg.AIModel))
		return nil
	}
	b.log.Warn("AI client unavailable. AI features will be limited.", "err", err)
	return nil
}

func displayName(providerName string) string {
	switch providerName {
	case "openai":
		return "OpenAI"
	case "anthropic":
		return "Anthropic"
	default:
		return providerName
	}
}

// Config returns a copy of the stored configuration.
func (b *Bot) Config() config.Config {
	return b.cfg
}

// AI returns the resolved AI client, or nil when AI features are limited.
func (b *Bot) AI() provider.Provider {
	return b.ai
}

// AIEnabled reports whether an AI client is available.
func (b *Bot) AIEnabled() bool {
	return b.ai != nil
}

// Logger returns the controller's logger.
func (b *Bot) Logger() *slog.Logger {
	return b.log
}

// Close releases the logging context if the bot built it.
func (b *Bot) Close() error {
	return b.ownLogger.Close()
}
