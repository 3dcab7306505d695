// Package logger provides an slog-based logging context with file and
// console destinations and a line template.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Destination selects where log lines are written.
type Destination string

const (
	DestinationFile    Destination = "file"
	DestinationConsole Destination = "console"
	DestinationBoth    Destination = "both"
)

const (
	DefaultName   = "autobot"
	DefaultFile   = "automation_bot.log"
	DefaultFormat = "{time} - {name} - {level} - {message}"
)

// Config describes logger settings.
type Config struct {
	Name        string
	Destination Destination
	Level       string
	Format      string
	File        string
	Dir         string // base directory for a relative File
}

// DefaultConfig mirrors the bot's historical setup: info level, file and
// stdout, timestamp-name-level-message lines.
func DefaultConfig() Config {
	return Config{
		Name:        DefaultName,
		Destination: DestinationBoth,
		Level:       "info",
		Format:      DefaultFormat,
		File:        DefaultFile,
	}
}

// Logger is a configured logging context. It is safe for concurrent use.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New builds a logger from cfg. Empty fields fall back to DefaultConfig.
func New(cfg Config) (*Logger, error) {
	cfg = withDefaults(cfg)

	var writers []io.Writer
	var file *os.File
	if cfg.Destination == DestinationConsole || cfg.Destination == DestinationBoth {
		writers = append(writers, os.Stdout)
	}
	if cfg.Destination == DestinationFile || cfg.Destination == DestinationBoth {
		path := expandPath(cfg.File, cfg.Dir)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("logger: create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("logger: open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}

	return &Logger{
		Logger: slog.New(NewTemplateHandler(io.MultiWriter(writers...), cfg.Name, cfg.Format, ParseLevel(cfg.Level))),
		file:   file,
	}, nil
}

// NewWriter builds a logger that writes to w only. Used by tests and by
// callers that already own a sink.
func NewWriter(w io.Writer, cfg Config) *Logger {
	cfg = withDefaults(cfg)
	return &Logger{Logger: slog.New(NewTemplateHandler(w, cfg.Name, cfg.Format, ParseLevel(cfg.Level)))}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// OrDiscard returns l, or a discarding slog logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Discard().Logger
}

// ParseDestination maps a config string to a Destination.
func ParseDestination(s string) (Destination, error) {
	switch d := Destination(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DestinationBoth, nil
	case DestinationFile, DestinationConsole, DestinationBoth:
		return d, nil
	default:
		return "", fmt.Errorf("logger: unknown destination %q", s)
	}
}

// ParseLevel maps a config string to an slog level. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Destination == "" {
		cfg.Destination = def.Destination
	}
	if cfg.Level == "" {
		cfg.Level = def.Level
	}
	if cfg.Format == "" {
		cfg.Format = def.Format
	}
	if cfg.File == "" {
		cfg.File = def.File
	}
	return cfg
}

func expandPath(path, dir string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	if dir != "" {
		return filepath.Join(dir, path)
	}
	return path
}
