package automation

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/linanwx/autobot/logger"
)

// Message is one pending inbound email.
type Message struct {
	Path      string
	From      string
	Subject   string
	MessageID string
	Body      string // plain text; HTML bodies are reduced to text
}

// Inbox yields pending messages and records the ones handled.
type Inbox interface {
	Pending(ctx context.Context) ([]Message, error)
	MarkDone(ctx context.Context, msg Message) error
}

// DirInbox reads .eml files from a spool directory. Handled messages move
// to a done/ subdirectory, unparseable ones to failed/.
type DirInbox struct {
	dir       string
	doneDir   string
	failedDir string
	log       *slog.Logger
}

// NewDirInbox creates the spool directories if needed.
func NewDirInbox(dir string, log *slog.Logger) (*DirInbox, error) {
	if dir == "" {
		return nil, fmt.Errorf("creating inbox: dir is empty")
	}
	in := &DirInbox{
		dir:       dir,
		doneDir:   filepath.Join(dir, "done"),
		failedDir: filepath.Join(dir, "failed"),
		log:       logger.OrDiscard(log),
	}
	for _, d := range []string{in.doneDir, in.failedDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("creating inbox directory %s: %w", d, err)
		}
	}
	return in, nil
}

// Pending returns parseable .eml files in name order. Malformed files are
// moved to failed/ rather than failing the pass.
func (in *DirInbox) Pending(ctx context.Context) ([]Message, error) {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		return nil, fmt.Errorf("reading inbox directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []Message
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".eml") {
			continue
		}
		path := filepath.Join(in.dir, entry.Name())
		msg, err := parseEML(path)
		if err != nil {
			in.quarantine(path, err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// MarkDone moves the message file into done/.
func (in *DirInbox) MarkDone(_ context.Context, msg Message) error {
	if err := os.Rename(msg.Path, filepath.Join(in.doneDir, filepath.Base(msg.Path))); err != nil {
		return fmt.Errorf("moving %s to done: %w", filepath.Base(msg.Path), err)
	}
	return nil
}

func (in *DirInbox) quarantine(path string, cause error) {
	name := filepath.Base(path)
	if err := os.Rename(path, filepath.Join(in.failedDir, name)); err != nil {
		in.log.Warn("unreadable message left in inbox", "file", name, "parse_err", cause, "err", err)
		return
	}
	in.log.Warn("unreadable message moved to failed", "file", name, "err", cause)
}

func parseEML(path string) (Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return Message{}, err
	}
	defer f.Close()

	m, err := netmail.ReadMessage(f)
	if err != nil {
		return Message{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	from := m.Header.Get("From")
	if addr, err := netmail.ParseAddress(from); err == nil {
		from = addr.Address
	}
	subject := m.Header.Get("Subject")
	if dec, err := new(mime.WordDecoder).DecodeHeader(subject); err == nil {
		subject = dec
	}

	body, err := readBody(m.Header.Get("Content-Type"), m.Header.Get("Content-Transfer-Encoding"), m.Body)
	if err != nil {
		return Message{}, fmt.Errorf("reading body of %s: %w", path, err)
	}

	return Message{
		Path:      path,
		From:      from,
		Subject:   subject,
		MessageID: m.Header.Get("Message-Id"),
		Body:      strings.TrimSpace(body),
	}, nil
}

// readBody returns the text of a message, preferring text/plain parts of
// multipart bodies.
func readBody(contentType, encoding string, r io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(r, params["boundary"])
		var html string
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", err
			}
			text, err := readBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if err != nil {
				return "", err
			}
			partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
			if partType == "text/plain" || partType == "" {
				return text, nil
			}
			if html == "" {
				html = text
			}
		}
		return html, nil
	}

	data, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", err
	}
	if mediaType == "text/html" {
		return htmlToText(string(data)), nil
	}
	return string(data), nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		data, err := io.ReadAll(r)
		if err != nil {
			return bytes.NewReader(nil)
		}
		clean := strings.Map(func(r rune) rune {
			if r == '\r' || r == '\n' || r == ' ' {
				return -1
			}
			return r
		}, string(data))
		out, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return bytes.NewReader(data)
		}
		return bytes.NewReader(out)
	}
	return r
}
