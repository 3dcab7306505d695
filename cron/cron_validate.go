package cron

import (
	"fmt"
	"strings"
	"time"
)

func validateNew(post Post, existing map[string]Post, now time.Time) error {
	if post.ID == "" {
		return fmt.Errorf("id is required")
	}
	if post.Platform == "" {
		return fmt.Errorf("platform is required")
	}
	if post.Content == "" {
		return fmt.Errorf("content is required")
	}
	if _, ok := existing[post.ID]; ok {
		return fmt.Errorf("post already exists: %s", post.ID)
	}

	switch post.Kind {
	case PostKindCron:
		if post.Expr == "" {
			return fmt.Errorf("expr is required")
		}
	case PostKindAt:
		if post.AtTime.IsZero() {
			return fmt.Errorf("at_time is required")
		}
		if !post.AtTime.After(now) {
			return fmt.Errorf("at_time must be in the future")
		}
	default:
		return fmt.Errorf("unsupported post kind: %s", post.Kind)
	}
	return nil
}

func validateStored(post Post, now time.Time) (ok bool, expiredAt bool) {
	if post.ID == "" || post.Platform == "" || post.Content == "" {
		return false, false
	}
	switch post.Kind {
	case PostKindCron:
		return post.Expr != "", false
	case PostKindAt:
		if post.AtTime.IsZero() {
			return false, false
		}
		if post.Enabled && !post.AtTime.After(now) {
			return false, true
		}
		return true, false
	}
	return false, false
}

func normalize(post Post) Post {
	post.ID = strings.TrimSpace(post.ID)
	post.Platform = strings.TrimSpace(post.Platform)
	post.Content = strings.TrimSpace(post.Content)
	post.Kind = strings.ToLower(strings.TrimSpace(post.Kind))
	post.Expr = strings.TrimSpace(post.Expr)
	if !post.AtTime.IsZero() {
		post.AtTime = post.AtTime.UTC()
	}

	if post.Kind == "" {
		if post.AtTime.IsZero() {
			post.Kind = PostKindCron
		} else {
			post.Kind = PostKindAt
		}
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	return post
}
