package llm

import (
	"context"
	"fmt"
	"strings"
)

// EchoProvider answers without calling any model. Useful offline and in
// tests.
type EchoProvider struct {
	Prefix string
}

func NewEcho(prefix string) *EchoProvider {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Echo:"
	}
	return &EchoProvider{Prefix: prefix}
}

func (e *EchoProvider) Name() string { return "echo" }

// Complete returns the user request section of the prompt, or the last
// non-empty line when there is none.
func (e *EchoProvider) Complete(_ context.Context, prompt string, images []Image) (string, error) {
	req := userRequest(prompt)
	if req == "" {
		req = "<empty prompt>"
	}
	out := fmt.Sprintf("%s %s", e.Prefix, req)
	if len(images) > 0 {
		out += fmt.Sprintf(" (%d image(s) received)", len(images))
	}
	return out, nil
}

func userRequest(prompt string) string {
	if _, rest, ok := strings.Cut(prompt, "User Request:"); ok {
		rest, _, _ = strings.Cut(rest, "\n\nPlease analyze")
		return strings.TrimSpace(rest)
	}

	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return ""
}
