package automation

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"

	"github.com/linanwx/autobot/logger"
	"github.com/linanwx/autobot/provider"
)

const (
	defaultReplyInputTokens = 2000
	replyMaxTokens          = 400
	replySystemPrompt       = "You are an email assistant. Write a short, polite reply to the email below. " +
		"Answer in the language of the email. Use plain Markdown, no subject line, no signature placeholder."
)

// MailSender delivers composed messages. *mail.Client satisfies it.
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewSMTPClient builds a go-mail client. Auth is used only when a username is set.
func NewSMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return c, nil
}

// SMTPResponder processes an Inbox and answers messages with AI drafted
// replies sent over SMTP.
type SMTPResponder struct {
	inbox          Inbox
	sender         MailSender
	from           string
	ai             provider.Provider
	log            *slog.Logger
	maxInputTokens int
}

// NewSMTPResponder wires an inbox to a sender. ai may be nil, in which case
// smart replies are skipped.
func NewSMTPResponder(inbox Inbox, sender MailSender, from string, ai provider.Provider, log *slog.Logger) *SMTPResponder {
	return &SMTPResponder{
		inbox:          inbox,
		sender:         sender,
		from:           from,
		ai:             ai,
		log:            logger.OrDiscard(log),
		maxInputTokens: defaultReplyInputTokens,
	}
}

// ProcessInbox handles every pending message. A message whose reply fails
// stays pending for the next pass.
func (r *SMTPResponder) ProcessInbox(ctx context.Context, smartReplies bool) (EmailOutcome, error) {
	var out EmailOutcome

	msgs, err := r.inbox.Pending(ctx)
	if err != nil {
		return out, err
	}
	if smartReplies && r.ai == nil && len(msgs) > 0 {
		r.log.Warn("smart replies requested but no AI client is configured")
	}

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if smartReplies && r.ai != nil {
			if err := r.reply(ctx, msg); err != nil {
				r.log.Warn("smart reply failed", "from", msg.From, "subject", msg.Subject, "err", err)
				continue
			}
			out.Replied++
		}
		if err := r.inbox.MarkDone(ctx, msg); err != nil {
			r.log.Warn("failed to mark message done", "path", msg.Path, "err", err)
			continue
		}
		out.Processed++
	}
	return out, nil
}

func (r *SMTPResponder) reply(ctx context.Context, msg Message) error {
	prompt := fmt.Sprintf("From: %s\nSubject: %s\n\n%s", msg.From, msg.Subject, truncateTokens(msg.Body, r.maxInputTokens))
	resp, err := r.ai.Chat(ctx, &provider.Request{
		System:    replySystemPrompt,
		Prompt:    prompt,
		MaxTokens: replyMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("drafting reply: %w", err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return fmt.Errorf("drafting reply: empty response")
	}

	m, err := r.compose(msg, text)
	if err != nil {
		return err
	}
	if err := r.sender.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	return nil
}

func (r *SMTPResponder) compose(msg Message, markdown string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(r.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.From); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.From, err)
	}
	m.Subject(replySubject(msg.Subject))
	if msg.MessageID != "" {
		m.SetGenHeader(mail.HeaderInReplyTo, msg.MessageID)
		m.SetGenHeader(mail.HeaderReferences, msg.MessageID)
	}

	m.SetBodyString(mail.TypeTextPlain, markdown)
	var html bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &html); err == nil {
		m.AddAlternativeString(mail.TypeTextHTML, html.String())
	}
	return m, nil
}

func replySubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}
