package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/linanwx/autobot/bot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tasks periodically until interrupted",
	Long: `Start autobot as a long-running service. Each task runs on its own
interval and scheduled posts are delivered as they come due.

Examples:
  autobot serve
  autobot serve --email-every 5m --files-every 1h
  autobot serve --posts-every 24h --platform telegram`,
	RunE: runServe,
}

var (
	serveEmailEvery time.Duration
	serveFilesEvery time.Duration
	servePostsEvery time.Duration
	servePlatform   string
)

func init() {
	serveCmd.Flags().DurationVar(&serveEmailEvery, "email-every", 15*time.Minute, "Email automation interval (0 disables)")
	serveCmd.Flags().DurationVar(&serveFilesEvery, "files-every", time.Hour, "File organization interval (0 disables)")
	serveCmd.Flags().DurationVar(&servePostsEvery, "posts-every", 24*time.Hour, "Post scheduling interval (0 disables)")
	serveCmd.Flags().StringVar(&servePlatform, "platform", "linkedin", "Platform to schedule posts for")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	log := rt.bot.Logger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	jobs := []struct {
		name  string
		every time.Duration
		run   func(context.Context, *bot.Bot) error
	}{
		{"emails", serveEmailEvery, func(ctx context.Context, b *bot.Bot) error {
			_, err := b.AutomateEmails(ctx, true)
			return err
		}},
		{"posts", servePostsEvery, func(ctx context.Context, b *bot.Bot) error {
			_, err := b.SchedulePosts(ctx, servePlatform, true)
			return err
		}},
		{"files", serveFilesEvery, func(ctx context.Context, b *bot.Bot) error {
			_, err := b.OrganizeFiles(ctx, true)
			return err
		}},
	}
	registered := 0
	for _, job := range jobs {
		if job.every <= 0 {
			log.Info("task disabled", "task", job.name)
			continue
		}
		run := job.run
		name := job.name
		_, err := s.NewJob(
			gocron.DurationJob(job.every),
			gocron.NewTask(func() { runJob(ctx, log, name, rt.bot, run) }),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", name, err)
		}
		registered++
	}
	if registered == 0 && rt.posts == nil {
		return errors.New("nothing to run; every task is disabled")
	}

	if rt.posts != nil {
		rt.posts.Start()
	}
	s.Start()
	log.Info("autobot service started", "jobs", registered)
	fmt.Fprintln(cmd.OutOrStdout(), "autobot is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	if err := s.Shutdown(); err != nil {
		log.Error("error stopping scheduler", "err", err)
	}
	log.Info("autobot service stopped")
	return nil
}

func runJob(ctx context.Context, log *slog.Logger, name string, b *bot.Bot, run func(context.Context, *bot.Bot) error) {
	if ctx.Err() != nil {
		return
	}
	if err := run(ctx, b); err != nil {
		if errors.Is(err, bot.ErrRateLimited) {
			log.Warn("task skipped", "task", name, "err", err)
			return
		}
		log.Error("task failed", "task", name, "err", err)
	}
}
