package cron

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const storeHeader = "# autobot scheduled posts; edit with `autobot posts` while serve is stopped\n"

// readStore returns the stored posts. A missing or empty store is not an error.
func (s *Scheduler) readStore() ([]Post, error) {
	if s.storePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.storePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("reading post store: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var posts []Post
	if err := yaml.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("parsing post store %s: %w", s.storePath, err)
	}
	return posts, nil
}

// saveLocked writes every post, oldest first, through a temp file in the
// store directory so a crash never leaves a truncated store behind.
func (s *Scheduler) saveLocked() error {
	if s.storePath == "" {
		return nil
	}

	posts := make([]Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})

	var buf bytes.Buffer
	buf.WriteString(storeHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("encoding post store: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding post store: %w", err)
	}

	dir := filepath.Dir(s.storePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating post store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.storePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating post store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing post store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing post store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.storePath); err != nil {
		return fmt.Errorf("replacing post store: %w", err)
	}
	return nil
}
