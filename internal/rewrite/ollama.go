package rewrite

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const defaultOllamaModel = "llama3.2"

// OllamaGenerator generates text with a local Ollama server's chat endpoint.
type OllamaGenerator struct {
	api   *api.Client
	model string
}

// NewOllama builds a client for baseURL. A nil httpClient uses http.DefaultClient;
// the per-call deadline comes from the request context.
func NewOllama(baseURL, model string, httpClient *http.Client) (*OllamaGenerator, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultOllamaModel
	}
	return &OllamaGenerator{api: api.NewClient(u, httpClient), model: model}, nil
}

func (o *OllamaGenerator) Name() string { return "ollama:" + o.model }

func (o *OllamaGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}
	var b strings.Builder
	err := o.api.Chat(ctx, req, func(r api.ChatResponse) error {
		b.WriteString(r.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}
