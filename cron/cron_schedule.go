package cron

import (
	"fmt"
	"time"
)

func (s *Scheduler) scheduleLocked(post Post) (func(), error) {
	if !post.Enabled {
		return nil, nil
	}

	switch post.Kind {
	case PostKindCron:
		entryID, err := s.cron.AddFunc(post.Expr, func() {
			s.fire(post)
		})
		if err != nil {
			return nil, err
		}
		return func() { s.cron.Remove(entryID) }, nil

	case PostKindAt:
		delay := time.Until(post.AtTime)
		if delay <= 0 {
			return nil, fmt.Errorf("at_time must be in the future")
		}

		timer := time.AfterFunc(delay, func() {
			s.fire(post)

			s.mu.Lock()
			defer s.mu.Unlock()
			// Removed, reloaded or stopped while publishing: the store is
			// no longer ours to rewrite.
			if _, ok := s.posts[post.ID]; !ok {
				return
			}
			delete(s.posts, post.ID)
			delete(s.cancels, post.ID)
			if err := s.saveLocked(); err != nil {
				s.log.Warn("failed to persist post store after one-shot post", "id", post.ID, "err", err)
			}
		})
		return func() { timer.Stop() }, nil
	}

	return nil, fmt.Errorf("unsupported post kind: %s", post.Kind)
}

func (s *Scheduler) fire(post Post) {
	if s.publish == nil {
		return
	}
	if err := s.publish(post); err != nil {
		s.log.Warn("post publish failed", "id", post.ID, "platform", post.Platform, "err", err)
		return
	}
	s.log.Info("post published", "id", post.ID, "platform", post.Platform)
}

func (s *Scheduler) unscheduleLocked(id string) {
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
}

func (s *Scheduler) resetLocked() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.posts = make(map[string]Post)
	s.cancels = make(map[string]func())
}
