package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

type OllamaProvider struct {
	client      *ollama.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewOllama(opts Options) (*OllamaProvider, error) {
	host := opts.OllamaHost
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	return &OllamaProvider{
		client:      ollama.NewClient(u, &http.Client{Timeout: 5 * time.Minute}),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Complete(ctx context.Context, prompt string, images []Image) (string, error) {
	stream := false
	req := &ollama.GenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": p.temperature,
			"num_predict": p.maxTokens,
		},
	}
	for _, img := range images {
		req.Images = append(req.Images, ollama.ImageData(img.Data))
	}

	var text strings.Builder
	err := p.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}
