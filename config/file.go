package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/linanwx/autobot/logger"
)

// DefaultFileName is the config file looked up when no path is given.
const DefaultFileName = "config.yaml"

// File is the on-disk layout of config.yaml.
type File struct {
	Bot          *Config            `json:"bot,omitempty" yaml:"bot,omitempty"` // explicit bot config, used verbatim
	Logging      LoggingConfig      `json:"logging,omitempty" yaml:"logging,omitempty"`
	Integrations IntegrationsConfig `json:"integrations,omitempty" yaml:"integrations,omitempty"`

	dir string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"` // file, console, both
	Level       string `json:"level,omitempty" yaml:"level,omitempty"`             // debug, info, warn, error
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`           // {time} {name} {level} {message}
	File        string `json:"file,omitempty" yaml:"file,omitempty"`               // log file path
}

// IntegrationsConfig wires real providers behind the bot's task operations.
// A nil section keeps the placeholder behaviour for that task.
type IntegrationsConfig struct {
	Email *EmailConfig `json:"email,omitempty" yaml:"email,omitempty"`
	Posts *PostsConfig `json:"posts,omitempty" yaml:"posts,omitempty"`
	Files *FilesConfig `json:"files,omitempty" yaml:"files,omitempty"`
}

// EmailConfig configures the inbox spool and the outgoing SMTP server.
type EmailConfig struct {
	InboxDir string `json:"inbox_dir" yaml:"inbox_dir"`
	SMTPHost string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty"` // defaults to 587
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	From     string `json:"from" yaml:"from"`
}

// PostsConfig configures the post store and the delivery targets.
type PostsConfig struct {
	StorePath      string          `json:"store_path,omitempty" yaml:"store_path,omitempty"`           // defaults to posts.yaml
	SpacingMinutes int             `json:"spacing_minutes,omitempty" yaml:"spacing_minutes,omitempty"` // defaults to 60
	Telegram       *TelegramConfig `json:"telegram,omitempty" yaml:"telegram,omitempty"`
	Discord        *DiscordConfig  `json:"discord,omitempty" yaml:"discord,omitempty"`
}

// TelegramConfig contains Telegram bot credentials.
type TelegramConfig struct {
	Token  string `json:"token" yaml:"token"`
	ChatID int64  `json:"chat_id" yaml:"chat_id"`
}

// DiscordConfig contains Discord bot credentials.
type DiscordConfig struct {
	Token     string `json:"token" yaml:"token"`
	ChannelID string `json:"channel_id" yaml:"channel_id"`
}

// FilesConfig configures the directory the file organizer works on.
type FilesConfig struct {
	Root string `json:"root" yaml:"root"`
}

// LoadFile reads a config file. A missing file yields an empty File with
// defaults applied.
func LoadFile(path string) (*File, error) {
	if path == "" {
		path = DefaultFileName
	}
	f := &File{dir: filepath.Dir(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		f.applyDefaults()
		return f, nil
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if f.Bot != nil {
		if err := f.Bot.Validate(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	f.applyDefaults()
	return f, nil
}

// ResolvePath makes a relative path relative to the config file's directory.
func (f *File) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || f.dir == "" {
		return p
	}
	return filepath.Join(f.dir, p)
}

// BuildLoggerConfig maps the logging section onto logger settings.
func (f *File) BuildLoggerConfig() (logger.Config, error) {
	dest, err := logger.ParseDestination(f.Logging.Destination)
	if err != nil {
		return logger.Config{}, err
	}
	return logger.Config{
		Name:        logger.DefaultName,
		Destination: dest,
		Level:       f.Logging.Level,
		Format:      f.Logging.Format,
		File:        f.Logging.File,
		Dir:         f.dir,
	}, nil
}
