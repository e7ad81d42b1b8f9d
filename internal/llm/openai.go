package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const deepSeekBaseURL = "https://api.deepseek.com/v1"

// OpenAIProvider talks to any OpenAI compatible chat completions API.
// DeepSeek is served through it with a different base URL.
type OpenAIProvider struct {
	client      *openai.Client
	name        string
	model       string
	temperature float32
	maxTokens   int
	vision      bool
}

func NewOpenAI(opts Options) *OpenAIProvider {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = NormalizeBaseURL(opts.BaseURL)
	}
	return newOpenAIProvider("openai", cfg, opts, true)
}

// NewDeepSeek accepts either the API root or the full chat completions
// endpoint as BaseURL.
func NewDeepSeek(opts Options) *OpenAIProvider {
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = deepSeekBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = NormalizeBaseURL(opts.BaseURL)
	}
	return newOpenAIProvider("deepseek", cfg, opts, false)
}

func newOpenAIProvider(name string, cfg openai.ClientConfig, opts Options, vision bool) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(cfg),
		name:        name,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		maxTokens:   opts.MaxTokens,
		vision:      vision,
	}
}

// NormalizeBaseURL strips a trailing /chat/completions so a full endpoint
// URL can be used as the client base.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return strings.TrimRight(u, "/")
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, images []Image) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}

	if p.vision && len(images) > 0 {
		parts := []openai.ChatMessagePart{{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt,
		}}
		for _, img := range images {
			dataURL := fmt.Sprintf("data:image/%s;base64,%s", img.Format(), base64.StdEncoding.EncodeToString(img.Data))
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
		msg.MultiContent = parts
	} else {
		msg.Content = prompt
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
