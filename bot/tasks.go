package bot

import (
	"context"
	"fmt"
	"time"
)

// AutomateEmails works through the inbox, sending AI replies when
// smartReplies is set.
func (b *Bot) AutomateEmails(ctx context.Context, smartReplies bool) (*EmailResult, error) {
	if err := b.take("emails"); err != nil {
		return nil, err
	}
	b.log.Info("Starting email automation...")

	out, err := b.email.ProcessInbox(ctx, smartReplies)
	if err != nil {
		return nil, fmt.Errorf("email automation: %w", err)
	}
	res := &EmailResult{
		Status:           StatusSuccess,
		EmailsProcessed:  out.Processed,
		SmartRepliesSent: out.Replied,
		SmartReplies:     smartReplies,
		Timestamp:        b.now(),
	}
	b.log.Info("Email automation completed",
		"emails_processed", res.EmailsProcessed,
		"smart_replies_sent", res.SmartRepliesSent,
		"smart_replies", res.SmartReplies,
	)
	return res, nil
}

// SchedulePosts schedules posts for platform. Any platform name is accepted.
func (b *Bot) SchedulePosts(ctx context.Context, platform string, aiContent bool) (*PostResult, error) {
	if err := b.take("posts"); err != nil {
		return nil, err
	}
	b.log.Info(fmt.Sprintf("Scheduling posts for %s...", platform))

	n, err := b.posts.Schedule(ctx, platform, aiContent)
	if err != nil {
		return nil, fmt.Errorf("post scheduling for %s: %w", platform, err)
	}
	res := &PostResult{
		Status:             StatusSuccess,
		Platform:           platform,
		PostsScheduled:     n,
		AIContentGenerated: aiContent,
		Timestamp:          b.now(),
	}
	b.log.Info("Post scheduling completed",
		"platform", res.Platform,
		"posts_scheduled", res.PostsScheduled,
		"ai_content_generated", res.AIContentGenerated,
	)
	return res, nil
}

// OrganizeFiles sorts files into categories.
func (b *Bot) OrganizeFiles(ctx context.Context, aiCategorization bool) (*FileResult, error) {
	if err := b.take("files"); err != nil {
		return nil, err
	}
	b.log.Info("Starting file organization...")

	out, err := b.files.Organize(ctx, aiCategorization)
	if err != nil {
		return nil, fmt.Errorf("file organization: %w", err)
	}
	res := &FileResult{
		Status:            StatusSuccess,
		FilesOrganized:    out.Organized,
		CategoriesCreated: out.Categories,
		AICategorization:  aiCategorization,
		Timestamp:         b.now(),
	}
	b.log.Info("File organization completed",
		"files_organized", res.FilesOrganized,
		"categories_created", res.CategoriesCreated,
		"ai_categorization", res.AICategorization,
	)
	return res, nil
}

// Status reports the controller state. It does not count against the task
// budget.
func (b *Bot) Status() Status {
	now := b.now()
	return Status{
		Status:       StatusActive,
		Config:       b.cfg,
		Uptime:       now.Sub(b.started).Round(time.Second).String(),
		LastActivity: now,
	}
}

func (b *Bot) take(task string) error {
	if b.limiter.Allow() {
		return nil
	}
	b.log.Warn("hourly task budget exhausted", "task", task, "max_tasks_per_hour", b.cfg.MaxTasksPerHour)
	return fmt.Errorf("%s: %w", task, ErrRateLimited)
}
