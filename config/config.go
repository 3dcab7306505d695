// Package config handles configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read when no explicit configuration is supplied.
const (
	EnvAIModel         = "AI_MODEL"
	EnvAutomationLevel = "AUTOMATION_LEVEL"
	EnvLearningMode    = "LEARNING_MODE"
	EnvMaxTasksPerHour = "MAX_TASKS_PER_HOUR"
)

var (
	// ErrInvalidValue reports an environment value that cannot be parsed or
	// is out of range.
	ErrInvalidValue = errors.New("invalid config value")
	// ErrIncomplete reports an explicit config that misses a required key.
	ErrIncomplete = errors.New("incomplete config")
)

// LookupFunc resolves an environment variable. It has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// OSLookup reads the real process environment.
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapLookup serves lookups from a fixed map.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// Config is the bot configuration. It is read-only once a bot is built.
type Config struct {
	AIModel         string `json:"ai_model" yaml:"ai_model"`
	AutomationLevel string `json:"automation_level" yaml:"automation_level"`
	LearningMode    bool   `json:"learning_mode" yaml:"learning_mode"`
	MaxTasksPerHour int    `json:"max_tasks_per_hour" yaml:"max_tasks_per_hour"`
}

// FromEnv builds a config from environment values, falling back to defaults
// for unset keys. A nil lookup means OSLookup.
func FromEnv(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = OSLookup
	}
	get := func(key, def string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return def
	}

	maxRaw := get(EnvMaxTasksPerHour, strconv.Itoa(defaultMaxTasksPerHour))
	maxTasks, err := strconv.Atoi(strings.TrimSpace(maxRaw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvMaxTasksPerHour, maxRaw)
	}
	if maxTasks <= 0 {
		return nil, fmt.Errorf("%w: %s=%q must be positive", ErrInvalidValue, EnvMaxTasksPerHour, maxRaw)
	}

	return &Config{
		AIModel:         get(EnvAIModel, defaultAIModel),
		AutomationLevel: get(EnvAutomationLevel, defaultAutomationLevel),
		LearningMode:    strings.ToLower(get(EnvLearningMode, "true")) == "true",
		MaxTasksPerHour: maxTasks,
	}, nil
}

// Validate rejects an explicit config that leaves a required key unset.
// Explicit configs are never merged with defaults.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrIncomplete)
	}
	var missing []string
	if strings.TrimSpace(c.AIModel) == "" {
		missing = append(missing, "ai_model")
	}
	if strings.TrimSpace(c.AutomationLevel) == "" {
		missing = append(missing, "automation_level")
	}
	if c.MaxTasksPerHour <= 0 {
		missing = append(missing, "max_tasks_per_hour")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
