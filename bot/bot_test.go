package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linanwx/autobot/automation"
	"github.com/linanwx/autobot/config"
	"github.com/linanwx/autobot/logger"
	"github.com/linanwx/autobot/provider"
)

func newTestBot(t *testing.T, opts Options) (*Bot, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	if opts.Logger == nil {
		opts.Logger = logger.NewWriter(&buf, logger.Config{Level: "debug"})
	}
	if opts.Lookup == nil {
		opts.Lookup = config.MapLookup(nil)
	}
	b, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, &buf
}

func TestNewFromEnv(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, Options{Lookup: config.MapLookup(map[string]string{
		config.EnvMaxTasksPerHour: "25",
		config.EnvLearningMode:    "FALSE",
	})})
	assert.Equal(t, config.Config{
		AIModel:         "gpt-3.5-turbo",
		AutomationLevel: "smart",
		LearningMode:    false,
		MaxTasksPerHour: 25,
	}, b.Config())
}

func TestNewInvalidEnv(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"lots", "0", "-3"} {
		_, err := New(Options{
			Lookup: config.MapLookup(map[string]string{config.EnvMaxTasksPerHour: raw}),
			Logger: logger.Discard(),
		})
		assert.ErrorIs(t, err, config.ErrInvalidValue, "MAX_TASKS_PER_HOUR=%q", raw)
	}
}

func TestNewExplicitConfigVerbatim(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{AIModel: "claude-sonnet-4", AutomationLevel: "basic", LearningMode: false, MaxTasksPerHour: 7}
	b, _ := newTestBot(t, Options{
		Config: cfg,
		Lookup: config.MapLookup(map[string]string{config.EnvAIModel: "ignored", config.EnvMaxTasksPerHour: "99"}),
	})
	assert.Equal(t, *cfg, b.Config())

	cfg.AIModel = "changed"
	assert.Equal(t, "claude-sonnet-4", b.Config().AIModel, "stored config must not alias the caller's")
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Config: &config.Config{AIModel: "gpt-4o"}, Logger: logger.Discard()})
	assert.ErrorIs(t, err, config.ErrIncomplete)
}

func TestMissingCredentialWarnsAndContinues(t *testing.T) {
	t.Parallel()

	b, buf := newTestBot(t, Options{})
	assert.False(t, b.AIEnabled())
	assert.Contains(t, buf.String(), "AI Automation Bot initialized")
	assert.Contains(t, buf.String(), "OpenAI API key not found. AI features will be limited.")

	ctx := context.Background()
	_, err := b.AutomateEmails(ctx, true)
	require.NoError(t, err)
	_, err = b.SchedulePosts(ctx, "linkedin", true)
	require.NoError(t, err)
	_, err = b.OrganizeFiles(ctx, true)
	require.NoError(t, err)
}

func TestCredentialResolvesProvider(t *testing.T) {
	t.Parallel()

	b, buf := newTestBot(t, Options{Lookup: config.MapLookup(map[string]string{"OPENAI_API_KEY": "sk-test"})})
	assert.True(t, b.AIEnabled())
	assert.Equal(t, "openai", b.AI().Name())
	assert.NotContains(t, buf.String(), "API key not found")

	b, buf = newTestBot(t, Options{Lookup: config.MapLookup(map[string]string{config.EnvAIModel: "claude-3-haiku"})})
	assert.False(t, b.AIEnabled())
	assert.Contains(t, buf.String(), "Anthropic API key not found. AI features will be limited.")
}

func TestAutomateEmails(t *testing.T) {
	t.Parallel()

	b, buf := newTestBot(t, Options{})
	ctx := context.Background()

	res, err := b.AutomateEmails(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 0, res.EmailsProcessed)
	assert.Equal(t, 5, res.SmartRepliesSent)
	assert.True(t, res.SmartReplies)
	assert.False(t, res.Timestamp.IsZero())

	res, err = b.AutomateEmails(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.SmartRepliesSent)
	assert.False(t, res.SmartReplies)

	assert.Contains(t, buf.String(), "Starting email automation...")
	assert.Contains(t, buf.String(), "Email automation completed")
}

func TestSchedulePosts(t *testing.T) {
	t.Parallel()

	b, buf := newTestBot(t, Options{})
	ctx := context.Background()

	res, err := b.SchedulePosts(ctx, "linkedin", true)
	require.NoError(t, err)
	assert.Equal(t, "linkedin", res.Platform)
	assert.True(t, res.AIContentGenerated)
	assert.Equal(t, 3, res.PostsScheduled)

	res, err = b.SchedulePosts(ctx, "twitter", false)
	require.NoError(t, err)
	assert.Equal(t, "twitter", res.Platform)
	assert.Equal(t, 0, res.PostsScheduled)

	res, err = b.SchedulePosts(ctx, "", true)
	require.NoError(t, err, "platform is not validated")
	assert.Equal(t, 3, res.PostsScheduled)

	assert.Contains(t, buf.String(), "Scheduling posts for linkedin...")
}

func TestOrganizeFiles(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, Options{})
	ctx := context.Background()

	res, err := b.OrganizeFiles(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 0, res.FilesOrganized)
	assert.Equal(t, 8, res.CategoriesCreated)

	res, err = b.OrganizeFiles(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.CategoriesCreated)
	assert.False(t, res.AICategorization)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, Options{})
	start := b.started
	b.now = func() time.Time { return start.Add(90 * time.Second) }

	st := b.Status()
	assert.Equal(t, StatusActive, st.Status)
	assert.Equal(t, b.Config(), st.Config)
	assert.Equal(t, "1m30s", st.Uptime)
	assert.Equal(t, start.Add(90*time.Second), st.LastActivity)
}

func TestResultJSONKeys(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, Options{})
	res, err := b.SchedulePosts(context.Background(), "linkedin", true)
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"status", "platform", "posts_scheduled", "ai_content_generated", "timestamp"} {
		assert.Contains(t, m, key)
	}

	data, err = json.Marshal(b.Status())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"max_tasks_per_hour":50`)
}

func TestHourlyBudget(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{AIModel: "gpt-4o", AutomationLevel: "smart", LearningMode: true, MaxTasksPerHour: 3}
	b, _ := newTestBot(t, Options{Config: cfg})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.OrganizeFiles(ctx, true)
		require.NoError(t, err)
	}
	_, err := b.AutomateEmails(ctx, true)
	assert.ErrorIs(t, err, ErrRateLimited)

	assert.Equal(t, StatusActive, b.Status().Status, "status is not budgeted")
}

type failingFiles struct{}

func (failingFiles) Organize(context.Context, bool) (automation.FileOutcome, error) {
	return automation.FileOutcome{}, errors.New("permission denied")
}

type recordingPosts struct {
	platform string
	ai       bool
}

func (r *recordingPosts) Schedule(_ context.Context, platform string, aiContent bool) (int, error) {
	r.platform, r.ai = platform, aiContent
	return 2, nil
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	posts := &recordingPosts{}
	b, _ := newTestBot(t, Options{Files: failingFiles{}, Posts: posts})
	ctx := context.Background()

	_, err := b.OrganizeFiles(ctx, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file organization")

	res, err := b.SchedulePosts(ctx, "discord", true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PostsScheduled)
	assert.Equal(t, "discord", posts.platform)
	assert.True(t, posts.ai)
}

type staticProvider struct{}

func (staticProvider) Name() string { return "static" }

func (staticProvider) Chat(context.Context, *provider.Request) (*provider.Response, error) {
	return &provider.Response{Content: "ok"}, nil
}

func TestInjectedProvider(t *testing.T) {
	t.Parallel()

	b, buf := newTestBot(t, Options{Provider: staticProvider{}})
	assert.True(t, b.AIEnabled())
	assert.NotContains(t, buf.String(), "API key not found")
}

func TestWireReceivesResolvedProvider(t *testing.T) {
	t.Parallel()

	var got provider.Provider
	posts := &recordingPosts{}
	b, _ := newTestBot(t, Options{
		Provider: staticProvider{},
		Wire: func(ai provider.Provider) (Capabilities, error) {
			got = ai
			return Capabilities{Posts: posts}, nil
		},
	})
	assert.Equal(t, staticProvider{}, got)

	res, err := b.SchedulePosts(context.Background(), "telegram", false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PostsScheduled)

	emails, err := b.AutomateEmails(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 5, emails.SmartRepliesSent, "unwired capabilities keep the placeholder")

	_, err = New(Options{
		Logger: logger.Discard(),
		Lookup: config.MapLookup(nil),
		Wire:   func(provider.Provider) (Capabilities, error) { return Capabilities{}, errors.New("bad smtp host") },
	})
	assert.ErrorContains(t, err, "bad smtp host")
}
