package publisher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linanwx/autobot/cron"
)

type recordingPublisher struct {
	platform string
	mu       sync.Mutex
	got      []cron.Post
}

func (p *recordingPublisher) Platform() string { return p.platform }

func (p *recordingPublisher) Publish(_ context.Context, post cron.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, post)
	return nil
}

func TestRegistryRoutesByPlatform(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	tg := &recordingPublisher{platform: "Telegram"}
	reg.Register(tg)

	require.NoError(t, reg.Publish(context.Background(), cron.Post{ID: "1", Platform: " telegram ", Content: "hi"}))
	require.NoError(t, reg.Publish(context.Background(), cron.Post{ID: "2", Platform: "linkedin", Content: "hi"}))

	assert.Len(t, tg.got, 1)
	assert.Equal(t, "1", tg.got[0].ID)
	_, isLog := reg.Get("linkedin").(*LogPublisher)
	assert.True(t, isLog, "unknown platforms use the log publisher")
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	chunks := splitMessage("line one\nline two\nline three", 10)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 10)
	}
	assert.Equal(t, "line one\nline two\nline three", strings.Join(chunks, ""))

	long := strings.Repeat("x", 25)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, splitMessage(long, 10))
}

func TestTelegramPublish(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/sendMessage"), "path %s", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
	}))
	defer server.Close()

	p, err := NewTelegram("123:abc", 42, bot.WithServerURL(server.URL))
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), cron.Post{Platform: "telegram", Content: "launch day"}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "launch day")
	assert.Contains(t, bodies[0], "42")
}

func TestConstructorsRequireCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewTelegram("", 1)
	assert.Error(t, err)
	_, err = NewTelegram("token", 0)
	assert.Error(t, err)
	_, err = NewDiscord("", "chan")
	assert.Error(t, err)
	_, err = NewDiscord("token", "")
	assert.Error(t, err)
}

func TestTelegramHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "launch day", "launch day"},
		{"escape", "a < b & c", "a &lt; b &amp; c"},
		{"emphasis", "**big** and *small* and ~~old~~", "<b>big</b> and <i>small</i> and <s>old</s>"},
		{"heading", "# Release\n\nNotes", "<b>Release</b>\n\nNotes"},
		{"code", "run `go test`", "run <code>go test</code>"},
		{"link", "[site](https://example.com)", `<a href="https://example.com">site</a>`},
		{"bullets", "- one\n- two", "• one\n• two"},
		{"ordered", "1. first\n2. second", "1. first\n2. second"},
		{"nested", "- a\n  - b\n- c", "• a\n  • b\n• c"},
		{"raw html", "hi <b>x</b>", "hi &lt;b&gt;x&lt;/b&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, telegramHTML(tt.in))
		})
	}
}

func TestTelegramPublishFallsBackToPlainText(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		first := len(bodies) == 1
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if first {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`)
			return
		}
		io.WriteString(w, `{"ok":true,"result":{"message_id":2,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
	}))
	defer server.Close()

	p, err := NewTelegram("123:abc", 42, bot.WithServerURL(server.URL))
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), cron.Post{Platform: "telegram", Content: "**launch** day"}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[0], "<b>launch</b> day")
	assert.Contains(t, bodies[0], "HTML")
	assert.Contains(t, bodies[1], "**launch** day")
}
