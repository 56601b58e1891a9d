package analyze

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const geminiModel = "gemini-1.5-flash-latest"

// geminiProvider generates content via the Gemini API.
type geminiProvider struct {
	apiKey  string
	model   string
	timeout time.Duration

	// generate performs one generation call (replaceable in tests).
	generate func(ctx context.Context, prompt string) (string, error)
}

func newGeminiProvider(apiKey string, timeout time.Duration) *geminiProvider {
	p := &geminiProvider{
		apiKey:  apiKey,
		model:   geminiModel,
		timeout: timeout,
	}
	p.generate = p.generateContent
	return p
}

func (p *geminiProvider) Name() string { return ProviderGemini }

func (p *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.generate(callCtx, prompt)
}

// generateContent creates a client and runs a single generation call.
func (p *geminiProvider) generateContent(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create Gemini client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini generation failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini")
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}
