package bot

import (
	"time"

	"github.com/linanwx/autobot/config"
)

const (
	StatusSuccess = "success"
	StatusActive  = "active"
)

// EmailResult reports one AutomateEmails call.
type EmailResult struct {
	Status           string    `json:"status"`
	EmailsProcessed  int       `json:"emails_processed"`
	SmartRepliesSent int       `json:"smart_replies_sent"`
	SmartReplies     bool      `json:"smart_replies"`
	Timestamp        time.Time `json:"timestamp"`
}

// PostResult reports one SchedulePosts call.
type PostResult struct {
	Status             string    `json:"status"`
	Platform           string    `json:"platform"`
	PostsScheduled     int       `json:"posts_scheduled"`
	AIContentGenerated bool      `json:"ai_content_generated"`
	Timestamp          time.Time `json:"timestamp"`
}

// FileResult reports one OrganizeFiles call.
type FileResult struct {
	Status            string    `json:"status"`
	FilesOrganized    int       `json:"files_organized"`
	CategoriesCreated int       `json:"categories_created"`
	AICategorization  bool      `json:"ai_categorization"`
	Timestamp         time.Time `json:"timestamp"`
}

// Status is the controller's status record.
type Status struct {
	Status       string        `json:"status"`
	Config       config.Config `json:"config"`
	Uptime       string        `json:"uptime"`
	LastActivity time.Time     `json:"last_activity"`
}
