package analyze

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// groqModels is the fixed inner fallback order for Groq. Each model is
// tried in turn; a failure on the last model fails the whole provider.
var groqModels = []string{
	"llama-3.1-8b-instant",
	"llama-3.2-3b-preview",
	"mixtral-8x7b-32768",
}

const defaultPromptCharLimit = 8000

// groqProvider generates content via Groq's OpenAI-compatible chat API,
// with an inner fallback across a fixed list of models.
type groqProvider struct {
	client      chatCompleter
	models      []string
	promptLimit int
	stderr      io.Writer
}

// newGroqProvider creates the Groq provider. promptLimit caps the prompt
// size before sending; zero uses the default.
func newGroqProvider(apiKey string, promptLimit int, timeout time.Duration) *groqProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	if promptLimit <= 0 {
		promptLimit = defaultPromptCharLimit
	}

	return &groqProvider{
		client:      openai.NewClientWithConfig(cfg),
		models:      groqModels,
		promptLimit: promptLimit,
		stderr:      os.Stderr,
	}
}

func (p *groqProvider) Name() string { return ProviderGroq }

// Generate tries each model in order, returning the first success.
// A failure on a non-last model is logged and the next model attempted;
// a failure on the last model fails the provider.
func (p *groqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	limited := limitPrompt(prompt, p.promptLimit)

	var lastErr error
	for i, model := range p.models {
		text, err := completeChat(ctx, p.client, model, limited)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if i < len(p.models)-1 {
			fmt.Fprintf(p.stderr, "Groq model %s failed, trying next: %v\n", model, err)
		}
	}
	return "", lastErr
}
