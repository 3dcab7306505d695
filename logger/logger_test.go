package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestTemplateHandlerDefaultFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWriter(&buf, Config{Name: "autobot"})
	l.Info("AI Automation Bot initialized")

	line := strings.TrimSpace(buf.String())
	pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} - autobot - INFO - AI Automation Bot initialized$`)
	if !pattern.MatchString(line) {
		t.Fatalf("unexpected line: %q", line)
	}
}

func TestTemplateHandlerAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWriter(&buf, Config{Format: "{level}|{message}"})
	l.With("task", "emails").WithGroup("result").Info("done", "sent", 5, "note", "two words")

	got := strings.TrimSpace(buf.String())
	want := `INFO|done task=emails result.sent=5 result.note="two words"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTemplateHandlerLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWriter(&buf, Config{Level: "warn", Format: "{level} {message}"})
	l.Info("hidden")
	l.Warn("shown")

	got := strings.TrimSpace(buf.String())
	if got != "WARNING shown" {
		t.Fatalf("got %q", got)
	}
}

func TestLevelName(t *testing.T) {
	t.Parallel()

	tests := map[slog.Level]string{
		slog.LevelDebug: "DEBUG",
		slog.LevelInfo:  "INFO",
		slog.LevelWarn:  "WARNING",
		slog.LevelError: "ERROR",
	}
	for level, want := range tests {
		if got := levelName(level); got != want {
			t.Fatalf("levelName(%v) = %q, want %q", level, got, want)
		}
	}
}

func TestNewWritesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, err := New(Config{Destination: DestinationFile, File: "logs/bot.log", Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Warn("OpenAI API key not found. AI features will be limited.")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "logs", "bot.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), " - autobot - WARNING - OpenAI API key not found.") {
		t.Fatalf("unexpected log content: %q", data)
	}
}

func TestParseDestination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Destination
		wantErr bool
	}{
		{"", DestinationBoth, false},
		{"FILE", DestinationFile, false},
		{" console ", DestinationConsole, false},
		{"both", DestinationBoth, false},
		{"syslog", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDestination(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDestination(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDestination(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	if ParseLevel("debug") != slog.LevelDebug || ParseLevel("WARNING") != slog.LevelWarn ||
		ParseLevel("error") != slog.LevelError || ParseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unexpected level mapping")
	}
}
