// Package provider defines the AI provider interface and the credential
// handling used to build one.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ErrNoCredential is returned when the provider's API key is not set.
var ErrNoCredential = errors.New("api key not found")

// Provider is the interface for AI completion providers.
type Provider interface {
	// Name returns the registered provider name.
	Name() string
	// Chat sends a completion request and returns the response.
	Chat(ctx context.Context, req *Request) (*Response, error)
}

// Request is a single-turn completion request.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Response is the completion result.
type Response struct {
	Content string
	Usage   Usage
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Constructor builds a provider for a model.
type Constructor func(apiKey, apiBase, model string, log *slog.Logger) Provider

// Registration defines metadata and constructor for a provider.
type Registration struct {
	Prefixes    []string // model name prefixes served by this provider
	EnvKey      string
	EnvBase     string
	Constructor Constructor
}

// defaultProvider serves models no registration claims.
const defaultProvider = "openai"

var registry = map[string]Registration{}

// Register registers provider metadata and constructor.
func Register(name string, reg Registration) {
	name = strings.TrimSpace(name)
	if name == "" || reg.Constructor == nil {
		return
	}
	prefixes := make([]string, 0, len(reg.Prefixes))
	for _, p := range reg.Prefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	reg.Prefixes = prefixes
	reg.EnvKey = strings.TrimSpace(reg.EnvKey)
	reg.EnvBase = strings.TrimSpace(reg.EnvBase)
	registry[name] = reg
}

// Supported returns all registered provider names in sorted order.
func Supported() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForModel returns the provider name that serves model.
func ForModel(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, name := range Supported() {
		for _, p := range registry[name].Prefixes {
			if strings.HasPrefix(m, p) {
				return name
			}
		}
	}
	return defaultProvider
}

// EnvKeyFor returns the environment variable holding the API key for model.
func EnvKeyFor(model string) string {
	return registry[ForModel(model)].EnvKey
}

// Resolve reads the credential for model through lookup and builds the
// provider. It returns ErrNoCredential when the key is unset or empty.
func Resolve(model string, lookup func(string) (string, bool), log *slog.Logger) (Provider, error) {
	name := ForModel(model)
	reg, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	key := ""
	if v, ok := lookup(reg.EnvKey); ok {
		key = strings.TrimSpace(v)
	}
	if key == "" {
		return nil, fmt.Errorf("%s: %w (%s)", name, ErrNoCredential, reg.EnvKey)
	}

	base := ""
	if reg.EnvBase != "" {
		if v, ok := lookup(reg.EnvBase); ok {
			base = strings.TrimSpace(v)
		}
	}
	return reg.Constructor(key, base, strings.TrimSpace(model), log), nil
}

func inputChars(req *Request) int {
	return len(req.System) + len(req.Prompt)
}
