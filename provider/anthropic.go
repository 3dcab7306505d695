package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linanwx/autobot/logger"
)

const anthropicDefaultMaxTokens = 1024

func init() {
	Register("anthropic", Registration{
		Prefixes: []string{"claude"},
		EnvKey:   "ANTHROPIC_API_KEY",
		EnvBase:  "ANTHROPIC_API_BASE",
		Constructor: func(apiKey, apiBase, model string, log *slog.Logger) Provider {
			return NewAnthropic(apiKey, apiBase, model, log)
		},
	})
}

// AnthropicProvider implements Provider using the Messages API.
type AnthropicProvider struct {
	model  string
	client anthropic.Client
	log    *slog.Logger
}

// NewAnthropic creates an Anthropic provider. An empty apiBase means the public API.
func NewAnthropic(apiKey, apiBase, model string, log *slog.Logger) *AnthropicProvider {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(sdkMaxRetries),
	}
	if base := strings.TrimRight(strings.TrimSpace(apiBase), "/"); base != "" {
		opts = append(opts, anthropicoption.WithBaseURL(base))
	}
	return &AnthropicProvider{
		model:  model,
		client: anthropic.NewClient(opts...),
		log:    logger.OrDiscard(log),
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Chat sends a messages request.
func (p *AnthropicProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	p.log.Debug("anthropic request", "provider", "anthropic", "model", p.model, "inputChars", inputChars(req))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		p.log.Error("anthropic request error", "provider", "anthropic", "err", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := &Response{
		Content: sb.String(),
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
	p.log.Debug("anthropic response",
		"provider", "anthropic",
		"model", p.model,
		"totalTokens", out.Usage.TotalTokens,
		"outputChars", len(out.Content),
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return out, nil
}
