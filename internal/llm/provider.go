// Package llm wraps the chat completion backends behind one interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyResponse = errors.New("model returned an empty response")

// Image is raw image bytes forwarded to vision-capable models.
type Image struct {
	MIMEType string
	Data     []byte
}

// Format is the subtype of the MIME type, e.g. "png" for image/png.
func (i Image) Format() string {
	_, sub, ok := strings.Cut(i.MIMEType, "/")
	if !ok {
		return ""
	}
	if sub == "jpg" {
		return "jpeg"
	}
	return sub
}

// Provider completes a single user turn.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string, images []Image) (string, error)
}

type Options struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	OllamaHost  string
	Temperature float64
	MaxTokens   int
}

var defaultModels = map[string]string{
	"deepseek":  "deepseek-chat",
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-1.5-flash",
	"anthropic": "claude-3-5-sonnet-latest",
	"ollama":    "llama3.2",
	"echo":      "echo",
}

// New builds the provider named by opts.Provider.
func New(ctx context.Context, opts Options) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Provider))
	if opts.Model == "" {
		opts.Model = defaultModels[name]
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}

	switch name {
	case "deepseek":
		return NewDeepSeek(opts), nil
	case "openai":
		return NewOpenAI(opts), nil
	case "gemini":
		return NewGemini(ctx, opts)
	case "anthropic":
		return NewAnthropic(opts), nil
	case "ollama":
		return NewOllama(opts)
	case "echo":
		return NewEcho(""), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
	}
}
