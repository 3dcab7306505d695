package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/linanwx/autobot/logger"
)

const (
	openAIAPIBase = "https://api.openai.com/v1"
	sdkMaxRetries = 2
)

func init() {
	Register("openai", Registration{
		Prefixes: []string{"gpt-", "o1", "o3", "o4"},
		EnvKey:   "OPENAI_API_KEY",
		EnvBase:  "OPENAI_API_BASE",
		Constructor: func(apiKey, apiBase, model string, log *slog.Logger) Provider {
			return NewOpenAI(apiKey, apiBase, model, log)
		},
	})
}

// OpenAIProvider implements Provider using the Chat Completions API.
type OpenAIProvider struct {
	model   string
	baseURL string
	client  openai.Client
	log     *slog.Logger
}

// NewOpenAI creates an OpenAI provider. An empty apiBase means the public API.
func NewOpenAI(apiKey, apiBase, model string, log *slog.Logger) *OpenAIProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if baseURL == "" {
		baseURL = openAIAPIBase
	}
	return &OpenAIProvider{
		model:   model,
		baseURL: baseURL,
		client: openai.NewClient(
			oaioption.WithAPIKey(apiKey),
			oaioption.WithBaseURL(baseURL),
			oaioption.WithMaxRetries(sdkMaxRetries),
		),
		log: logger.OrDiscard(log),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Chat sends a chat completion request.
func (p *OpenAIProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	p.log.Debug("openai request", "provider", "openai", "model", p.model, "inputChars", inputChars(req))

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		p.log.Error("openai request error", "provider", "openai", "err", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	out := &Response{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	p.log.Debug("openai response",
		"provider", "openai",
		"model", p.model,
		"totalTokens", out.Usage.TotalTokens,
		"outputChars", len(out.Content),
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return out, nil
}
