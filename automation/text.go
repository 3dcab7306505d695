package automation

import (
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
	codecErr  error
)

// htmlToText reduces an HTML body to its visible text.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, head").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// truncateTokens cuts text to at most limit cl100k tokens. If the tokenizer
// is unavailable it falls back to a rough four-bytes-per-token cut.
func truncateTokens(text string, limit int) string {
	if limit <= 0 || text == "" {
		return text
	}
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if codecErr != nil {
		if n := limit * 4; len(text) > n {
			return text[:n]
		}
		return text
	}

	ids, _, err := codec.Encode(text)
	if err != nil || len(ids) <= limit {
		return text
	}
	out, err := codec.Decode(ids[:limit])
	if err != nil {
		return text
	}
	return out
}

// sanitizeCategory turns model output into a safe directory name.
func sanitizeCategory(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-_")
	if len(out) > 32 {
		out = out[:32]
	}
	return out
}

// listMarker matches a leading bullet or "1." / "1)" numbering.
var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

// splitDrafts parses one-per-line model output, dropping bullets and numbering.
func splitDrafts(s string, limit int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
