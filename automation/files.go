package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/linanwx/autobot/logger"
	"github.com/linanwx/autobot/provider"
)

const (
	fallbackCategory   = "other"
	categorizeMaxFiles = 200
	categorizeSystem   = "You sort files into folders. For each file name, answer with one line `name: category` " +
		"where category is a single lowercase word. Reuse categories where sensible."
)

var extensionCategories = map[string]string{}

func init() {
	groups := map[string][]string{
		"documents":     {"pdf", "doc", "docx", "txt", "md", "odt", "rtf", "pages"},
		"spreadsheets":  {"xls", "xlsx", "csv", "ods", "numbers"},
		"presentations": {"ppt", "pptx", "odp", "key"},
		"images":        {"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "heic", "tiff"},
		"audio":         {"mp3", "wav", "flac", "aac", "ogg", "m4a"},
		"video":         {"mp4", "mov", "avi", "mkv", "webm"},
		"archives":      {"zip", "tar", "gz", "tgz", "rar", "7z", "bz2", "xz"},
		"code":          {"go", "py", "js", "ts", "java", "c", "cpp", "h", "rs", "rb", "sh", "json", "yaml", "yml", "html", "css"},
	}
	for category, exts := range groups {
		for _, ext := range exts {
			extensionCategories[ext] = category
		}
	}
}

// DirOrganizer moves the files at the top level of a directory into
// per-category subdirectories.
type DirOrganizer struct {
	root string
	ai   provider.Provider
	log  *slog.Logger
}

// NewDirOrganizer creates an organizer for root. ai may be nil, in which
// case categories come from file extensions only.
func NewDirOrganizer(root string, ai provider.Provider, log *slog.Logger) *DirOrganizer {
	return &DirOrganizer{root: root, ai: ai, log: logger.OrDiscard(log)}
}

// Organize sorts the files. With aiCategorization the AI client names the
// categories and the extension table fills any gaps.
func (o *DirOrganizer) Organize(ctx context.Context, aiCategorization bool) (FileOutcome, error) {
	var out FileOutcome

	entries, err := os.ReadDir(o.root)
	if err != nil {
		return out, fmt.Errorf("reading %s: %w", o.root, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return out, nil
	}

	var suggested map[string]string
	if aiCategorization {
		if o.ai == nil {
			o.log.Warn("AI categorization requested but no AI client is configured")
		} else if suggested, err = o.suggest(ctx, names); err != nil {
			o.log.Warn("AI categorization failed, using extensions", "err", err)
			suggested = nil
		}
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		category := suggested[name]
		if category == "" {
			category = categoryForExtension(name)
		}

		dir := filepath.Join(o.root, category)
		created, err := ensureDir(dir)
		if errors.Is(err, errNotDir) {
			o.log.Warn("category name collides with a file, skipping", "file", name, "category", category)
			continue
		}
		if err != nil {
			return out, err
		}
		if created {
			out.Categories++
		}

		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); err == nil {
			o.log.Warn("file already exists in category, skipping", "file", name, "category", category)
			continue
		}
		if err := os.Rename(filepath.Join(o.root, name), target); err != nil {
			return out, fmt.Errorf("moving %s: %w", name, err)
		}
		out.Organized++
	}
	return out, nil
}

func (o *DirOrganizer) suggest(ctx context.Context, names []string) (map[string]string, error) {
	if len(names) > categorizeMaxFiles {
		names = names[:categorizeMaxFiles]
	}
	resp, err := o.ai.Chat(ctx, &provider.Request{
		System: categorizeSystem,
		Prompt: strings.Join(names, "\n"),
	})
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	out := make(map[string]string)
	for _, line := range strings.Split(resp.Content, "\n") {
		idx := strings.LastIndex(line, ":")
		if idx <= 0 {
			continue
		}
		name := strings.Trim(strings.TrimSpace(line[:idx]), "`-* ")
		category := sanitizeCategory(line[idx+1:])
		if known[name] && category != "" {
			out[name] = category
		}
	}
	return out, nil
}

func categoryForExtension(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if c, ok := extensionCategories[ext]; ok {
		return c
	}
	return fallbackCategory
}

var errNotDir = errors.New("exists and is not a directory")

func ensureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s: %w", dir, errNotDir)
		}
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", dir, err)
	}
	return true, nil
}
