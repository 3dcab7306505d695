package publisher

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	postMarkdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))
	htmlEscaper  = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// telegramHTML renders post markdown as the HTML subset the Telegram Bot API
// accepts. Headings become bold lines and lists become bullet lines.
func telegramHTML(markdown string) string {
	src := []byte(markdown)
	doc := postMarkdown.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := node.(type) {
		case *ast.Heading:
			if entering {
				buf.WriteString("<b>")
			} else {
				buf.WriteString("</b>\n\n")
			}

		case *ast.Paragraph:
			if !entering && !inListItem(n) {
				buf.WriteString("\n\n")
			}

		case *ast.Blockquote:
			if entering {
				buf.WriteString("<blockquote>")
			} else {
				trimNewlines(&buf)
				buf.WriteString("</blockquote>\n\n")
			}

		case *ast.List:
			if entering && inListItem(n) {
				buf.WriteByte('\n')
			}
			if !entering && !inListItem(n) {
				buf.WriteByte('\n')
			}

		case *ast.ListItem:
			if entering {
				buf.WriteString(strings.Repeat("  ", listDepth(n)))
				buf.WriteString(listMarker(n))
			} else if n.NextSibling() != nil || !inListItem(n.Parent()) {
				trimNewlines(&buf)
				buf.WriteByte('\n')
			}

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if !entering {
				break
			}
			buf.WriteString("<pre>")
			writeLines(&buf, n, src)
			trimNewlines(&buf)
			buf.WriteString("</pre>\n\n")
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock:
			if !entering {
				break
			}
			writeLines(&buf, n, src)
			if n.HasClosure() {
				buf.WriteString(htmlEscaper.Replace(string(n.ClosureLine.Value(src))))
			}
			return ast.WalkSkipChildren, nil

		case *ast.ThematicBreak:
			if entering {
				buf.WriteString("----------\n\n")
			}

		case *ast.Text:
			if entering {
				buf.WriteString(htmlEscaper.Replace(string(n.Segment.Value(src))))
				if n.SoftLineBreak() || n.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}

		case *ast.String:
			if entering {
				buf.WriteString(htmlEscaper.Replace(string(n.Value)))
			}

		case *ast.Emphasis:
			tag := "i"
			if n.Level == 2 {
				tag = "b"
			}
			if entering {
				fmt.Fprintf(&buf, "<%s>", tag)
			} else {
				fmt.Fprintf(&buf, "</%s>", tag)
			}

		case *east.Strikethrough:
			if entering {
				buf.WriteString("<s>")
			} else {
				buf.WriteString("</s>")
			}

		case *ast.CodeSpan:
			if !entering {
				break
			}
			buf.WriteString("<code>")
			buf.WriteString(htmlEscaper.Replace(plainText(n, src)))
			buf.WriteString("</code>")
			return ast.WalkSkipChildren, nil

		case *ast.Link:
			if entering {
				fmt.Fprintf(&buf, `<a href="%s">`, htmlEscaper.Replace(string(n.Destination)))
			} else {
				buf.WriteString("</a>")
			}

		case *ast.AutoLink:
			if !entering {
				break
			}
			url := string(n.URL(src))
			switch {
			case n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:"):
				url = "mailto:" + url
			case n.AutoLinkType == ast.AutoLinkURL && !strings.Contains(url, "://"):
				url = "http://" + url
			}
			fmt.Fprintf(&buf, `<a href="%s">%s</a>`, htmlEscaper.Replace(url), htmlEscaper.Replace(string(n.Label(src))))
			return ast.WalkSkipChildren, nil

		case *ast.Image:
			if !entering {
				break
			}
			label := plainText(n, src)
			if label == "" {
				label = string(n.Destination)
			}
			fmt.Fprintf(&buf, `<a href="%s">%s</a>`, htmlEscaper.Replace(string(n.Destination)), htmlEscaper.Replace(label))
			return ast.WalkSkipChildren, nil

		case *ast.RawHTML:
			if !entering {
				break
			}
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				buf.WriteString(htmlEscaper.Replace(string(seg.Value(src))))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimRight(buf.String(), "\n ")
}

func inListItem(n ast.Node) bool {
	_, ok := n.Parent().(*ast.ListItem)
	return ok
}

func listDepth(item ast.Node) int {
	depth := -1
	for p := item.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*ast.List); ok {
			depth++
		}
	}
	return depth
}

func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "• "
	}
	idx := list.Start
	if idx == 0 {
		idx = 1
	}
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		idx++
	}
	return fmt.Sprintf("%d. ", idx)
}

func writeLines(buf *bytes.Buffer, n ast.Node, src []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.WriteString(htmlEscaper.Replace(string(seg.Value(src))))
	}
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func trimNewlines(buf *bytes.Buffer) {
	b := buf.Bytes()
	n := len(b)
	for n > 0 && b[n-1] == '\n' {
		n--
	}
	buf.Truncate(n)
}
