// Package automation holds the capabilities behind the bot's task
// operations: answering email, scheduling social posts and organizing files.
//
// Each capability has a stub used when no real integration is configured.
// The stubs report fixed counts and touch nothing.
package automation

import "context"

// EmailOutcome reports one inbox pass.
type EmailOutcome struct {
	Processed int
	Replied   int
}

// FileOutcome reports one organize pass.
type FileOutcome struct {
	Organized  int
	Categories int // categories created by this pass
}

// EmailResponder works through pending mail, optionally sending AI replies.
type EmailResponder interface {
	ProcessInbox(ctx context.Context, smartReplies bool) (EmailOutcome, error)
}

// PostScheduler schedules posts for a platform and reports how many.
type PostScheduler interface {
	Schedule(ctx context.Context, platform string, aiContent bool) (int, error)
}

// FileCategorizer sorts files into categories.
type FileCategorizer interface {
	Organize(ctx context.Context, aiCategorization bool) (FileOutcome, error)
}

// Counts reported by the stubs.
const (
	StubSmartReplies      = 5
	StubPostsScheduled    = 3
	StubCategoriesCreated = 8
)

// StubEmail reports StubSmartReplies replies when smart replies are on.
type StubEmail struct{}

func (StubEmail) ProcessInbox(_ context.Context, smartReplies bool) (EmailOutcome, error) {
	var out EmailOutcome
	if smartReplies {
		out.Replied = StubSmartReplies
	}
	return out, nil
}

// StubPosts reports StubPostsScheduled posts when AI content is on.
type StubPosts struct{}

func (StubPosts) Schedule(_ context.Context, _ string, aiContent bool) (int, error) {
	if aiContent {
		return StubPostsScheduled, nil
	}
	return 0, nil
}

// StubFiles reports StubCategoriesCreated categories when AI categorization is on.
type StubFiles struct{}

func (StubFiles) Organize(_ context.Context, aiCategorization bool) (FileOutcome, error) {
	var out FileOutcome
	if aiCategorization {
		out.Categories = StubCategoriesCreated
	}
	return out, nil
}
