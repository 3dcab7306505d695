package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linanwx/autobot/bot"
	"github.com/linanwx/autobot/config"
	"github.com/linanwx/autobot/logger"
)

func TestRunOncePrintsResults(t *testing.T) {
	b, err := bot.New(bot.Options{Lookup: config.MapLookup(nil), Logger: logger.Discard()})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runOnce(context.Background(), b, "linkedin", &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "AI Automation Bot - Task Results:", lines[0])

	var posts bot.PostResult
	require.True(t, strings.HasPrefix(lines[2], "Posts: "))
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[2], "Posts: ")), &posts))
	assert.Equal(t, "linkedin", posts.Platform)
	assert.Equal(t, 3, posts.PostsScheduled)
	assert.True(t, posts.AIContentGenerated)

	assert.Contains(t, lines[1], `"smart_replies_sent":5`)
	assert.Contains(t, lines[3], `"categories_created":8`)
}

func TestLoadFileAppliesFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n  destination: both\n"), 0o644))

	configPath, logLevel, logDest = path, "debug", "console"
	t.Cleanup(func() { configPath, logLevel, logDest = "", "", "" })

	_, lcfg, err := loadFile()
	require.NoError(t, err)
	assert.Equal(t, "debug", lcfg.Level)
	assert.Equal(t, logger.DestinationConsole, lcfg.Destination)
}

func TestLoadFileRejectsUnknownDestination(t *testing.T) {
	configPath, logDest = filepath.Join(t.TempDir(), "missing.yaml"), "syslog"
	t.Cleanup(func() { configPath, logDest = "", "" })

	_, _, err := loadFile()
	assert.Error(t, err)
}
