package analyze

import (
	"context"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const openAIModel = "gpt-3.5-turbo"

// openAIProvider generates content via OpenAI's chat completion API.
// It is the last resort in the fallback order (paid tier).
type openAIProvider struct {
	client chatCompleter
	model  string
}

func newOpenAIProvider(apiKey string, timeout time.Duration) *openAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &openAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  openAIModel,
	}
}

func (p *openAIProvider) Name() string { return ProviderOpenAI }

func (p *openAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return completeChat(ctx, p.client, p.model, prompt)
}
