package cron

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Load replaces the in-memory schedule with the store contents. Expired
// one-shot posts are pruned from the store.
func (s *Scheduler) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readStore()
	if err != nil {
		return err
	}

	// Only reset after the store parsed successfully.
	s.resetLocked()

	now := time.Now().UTC()
	dirty := false
	for _, raw := range list {
		post := normalize(raw)
		ok, expired := validateStored(post, now)
		if !ok {
			if expired {
				dirty = true
			}
			continue
		}

		s.posts[post.ID] = post
		cancel, err := s.scheduleLocked(post)
		if err != nil {
			s.log.Warn("failed to schedule post from store", "id", post.ID, "kind", post.Kind, "err", err)
			continue
		}
		if cancel != nil {
			s.cancels[post.ID] = cancel
		}
	}

	if dirty {
		if err := s.saveLocked(); err != nil {
			s.log.Warn("failed to save post store after pruning expired posts", "err", err)
		}
	}
	return nil
}

// Add schedules a recurring post on a cron expression and returns its ID.
func (s *Scheduler) Add(platform, content, expr string) (string, error) {
	return s.add(Post{
		ID:        uuid.NewString(),
		Platform:  strings.TrimSpace(platform),
		Content:   strings.TrimSpace(content),
		Kind:      PostKindCron,
		Expr:      strings.TrimSpace(expr),
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	})
}

// AddAt schedules a one-shot post and returns its ID.
func (s *Scheduler) AddAt(platform, content string, at time.Time) (string, error) {
	return s.add(Post{
		ID:        uuid.NewString(),
		Platform:  strings.TrimSpace(platform),
		Content:   strings.TrimSpace(content),
		Kind:      PostKindAt,
		AtTime:    at.UTC(),
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *Scheduler) add(post Post) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateNew(post, s.posts, time.Now().UTC()); err != nil {
		return "", err
	}

	cancel, err := s.scheduleLocked(post)
	if err != nil {
		return "", err
	}

	s.posts[post.ID] = post
	if cancel != nil {
		s.cancels[post.ID] = cancel
	}
	if err := s.saveLocked(); err != nil {
		s.unscheduleLocked(post.ID)
		delete(s.posts, post.ID)
		return "", err
	}
	return post.ID, nil
}

// Remove unschedules and deletes a post.
func (s *Scheduler) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post not found: %s", id)
	}

	s.unscheduleLocked(id)
	delete(s.posts, id)
	return s.saveLocked()
}

// List returns the scheduled posts ordered by creation time.
func (s *Scheduler) List() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Post, 0, len(s.posts))
	for _, post := range s.posts {
		out = append(out, post)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}
