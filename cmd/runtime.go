package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linanwx/autobot/automation"
	"github.com/linanwx/autobot/bot"
	"github.com/linanwx/autobot/config"
	"github.com/linanwx/autobot/cron"
	"github.com/linanwx/autobot/logger"
	"github.com/linanwx/autobot/provider"
	"github.com/linanwx/autobot/publisher"
)

const publishTimeout = 30 * time.Second

// runtime is a built bot plus the resources the commands must release.
type runtime struct {
	bot   *bot.Bot
	posts *cron.Scheduler // nil without a posts integration
	log   *logger.Logger
}

func (r *runtime) Close() {
	if r.posts != nil {
		r.posts.Stop()
	}
	_ = r.log.Close()
}

// loadFile reads the config file and applies the persistent flag overrides.
func loadFile() (*config.File, logger.Config, error) {
	file, err := config.LoadFile(configPath)
	if err != nil {
		return nil, logger.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		file.Logging.Level = logLevel
	}
	if logDest != "" {
		file.Logging.Destination = logDest
	}
	lcfg, err := file.BuildLoggerConfig()
	if err != nil {
		return nil, logger.Config{}, err
	}
	return file, lcfg, nil
}

// buildRuntime builds the bot with the integrations configured in the file.
// Tasks without an integration keep their placeholder behaviour.
func buildRuntime() (*runtime, error) {
	file, lcfg, err := loadFile()
	if err != nil {
		return nil, err
	}
	lg, err := logger.New(lcfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{log: lg}
	b, err := bot.New(bot.Options{
		Config: file.Bot,
		Lookup: config.OSLookup,
		Logger: lg,
		Wire: func(ai provider.Provider) (bot.Capabilities, error) {
			return rt.wire(file, ai, lg.Logger)
		},
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.bot = b
	return rt, nil
}

func (r *runtime) wire(file *config.File, ai provider.Provider, log *slog.Logger) (bot.Capabilities, error) {
	var caps bot.Capabilities
	in := file.Integrations

	if in.Email != nil {
		inbox, err := automation.NewDirInbox(file.ResolvePath(in.Email.InboxDir), log.With("task", "emails"))
		if err != nil {
			return caps, err
		}
		client, err := automation.NewSMTPClient(automation.SMTPConfig{
			Host:     in.Email.SMTPHost,
			Port:     in.Email.SMTPPort,
			Username: in.Email.Username,
			Password: in.Email.Password,
		})
		if err != nil {
			return caps, err
		}
		caps.Email = automation.NewSMTPResponder(inbox, client, in.Email.From, ai, log.With("task", "emails"))
		log.Info("email integration enabled", "inbox", in.Email.InboxDir, "smtp", in.Email.SMTPHost)
	}

	if in.Posts != nil {
		sched, err := newPostScheduler(file, log)
		if err != nil {
			return caps, err
		}
		r.posts = sched
		spacing := time.Duration(in.Posts.SpacingMinutes) * time.Minute
		caps.Posts = automation.NewCronPosts(sched, ai, spacing, log.With("task", "posts"))
		log.Info("posts integration enabled", "store", in.Posts.StorePath)
	}

	if in.Files != nil {
		caps.Files = automation.NewDirOrganizer(file.ResolvePath(in.Files.Root), ai, log.With("task", "files"))
		log.Info("files integration enabled", "root", in.Files.Root)
	}
	return caps, nil
}

// newPostScheduler loads the post store and routes fired posts to the
// configured publishers.
func newPostScheduler(file *config.File, log *slog.Logger) (*cron.Scheduler, error) {
	pc := file.Integrations.Posts
	registry := publisher.NewRegistry(log)

	if tg := pc.Telegram; tg != nil && tg.Token != "" {
		p, err := publisher.NewTelegram(tg.Token, tg.ChatID)
		if err != nil {
			return nil, err
		}
		registry.Register(p)
	}
	if dc := pc.Discord; dc != nil && dc.Token != "" {
		p, err := publisher.NewDiscord(dc.Token, dc.ChannelID)
		if err != nil {
			return nil, err
		}
		registry.Register(p)
	}

	publish := func(post cron.Post) error {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		return registry.Publish(ctx, post)
	}
	sched := cron.NewScheduler(file.ResolvePath(pc.StorePath), publish, log.With("component", "posts"))
	if err := sched.Load(); err != nil {
		return nil, fmt.Errorf("failed to load post store: %w", err)
	}
	return sched, nil
}
