package config

const (
	defaultAIModel         = "gpt-3.5-turbo"
	defaultAutomationLevel = "smart"
	defaultLearningMode    = true
	defaultMaxTasksPerHour = 50

	defaultSMTPPort       = 587
	defaultPostSpacingMin = 60
	defaultPostStore      = "posts.yaml"
)

// DefaultConfig returns the config used when the environment sets nothing.
func DefaultConfig() *Config {
	return &Config{
		AIModel:         defaultAIModel,
		AutomationLevel: defaultAutomationLevel,
		LearningMode:    defaultLearningMode,
		MaxTasksPerHour: defaultMaxTasksPerHour,
	}
}

func defaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Destination: "both",
		Level:       "info",
		Format:      "{time} - {name} - {level} - {message}",
		File:        "automation_bot.log",
	}
}

func (f *File) applyDefaults() {
	def := defaultLoggingConfig()
	if f.Logging.Destination == "" {
		f.Logging.Destination = def.Destination
	}
	if f.Logging.Level == "" {
		f.Logging.Level = def.Level
	}
	if f.Logging.Format == "" {
		f.Logging.Format = def.Format
	}
	if f.Logging.File == "" {
		f.Logging.File = def.File
	}

	if email := f.Integrations.Email; email != nil && email.SMTPPort == 0 {
		email.SMTPPort = defaultSMTPPort
	}
	if posts := f.Integrations.Posts; posts != nil {
		if posts.SpacingMinutes <= 0 {
			posts.SpacingMinutes = defaultPostSpacingMin
		}
		if posts.StorePath == "" {
			posts.StorePath = defaultPostStore
		}
	}
}
