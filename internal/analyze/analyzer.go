// Package analyze generates a title, description, summary, and tags for a
// video transcript using external LLM providers with fallback.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Provider identifiers, recorded on every Analysis.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	// ErrNoProviderConfigured indicates no LLM provider credentials were
	// supplied. Raised once at construction, not per request.
	ErrNoProviderConfigured = errors.New("no AI provider configured")

	// ErrAllProvidersFailed indicates every configured provider was tried
	// and none produced a result.
	ErrAllProvidersFailed = errors.New("all AI providers failed")

	// ErrEmptyTranscript indicates the transcript was blank; no provider
	// call is attempted.
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// Analysis is the generated content for one video. All fields are non-empty:
// the parser substitutes fixed placeholders for anything a provider omits.
type Analysis struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Provider    string   `json:"provider"`
}

// provider is a single content-generation strategy. Providers are tried in
// order; each failure is logged and the next provider attempted.
type provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the provider credentials and tunables for an Analyzer.
type Config struct {
	GroqAPIKey   string
	GeminiAPIKey string
	OpenAIAPIKey string

	// PromptCharLimit caps the prompt sent to Groq. Zero uses the default.
	PromptCharLimit int

	// Timeout bounds each individual provider call. Zero uses the default.
	Timeout time.Duration
}

const defaultLLMTimeout = 30 * time.Second

// Analyzer generates video content from transcripts, falling back across
// providers in the fixed order groq > gemini > openai.
type Analyzer struct {
	providers []provider
	stderr    io.Writer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStderr sets the writer for provider-failure logging.
func WithStderr(w io.Writer) Option {
	return func(a *Analyzer) {
		a.stderr = w
	}
}

// withProviders replaces the provider chain (for testing).
func withProviders(providers []provider) Option {
	return func(a *Analyzer) {
		a.providers = providers
	}
}

// NewAnalyzer creates an Analyzer from the configured credentials.
// Providers are enabled in priority order by which keys are present.
// Returns ErrNoProviderConfigured if cfg enables no provider.
func NewAnalyzer(cfg Config, opts ...Option) (*Analyzer, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}

	a := &Analyzer{stderr: os.Stderr}

	if cfg.GroqAPIKey != "" {
		a.providers = append(a.providers, newGroqProvider(cfg.GroqAPIKey, cfg.PromptCharLimit, timeout))
	}
	if cfg.GeminiAPIKey != "" {
		a.providers = append(a.providers, newGeminiProvider(cfg.GeminiAPIKey, timeout))
	}
	if cfg.OpenAIAPIKey != "" {
		a.providers = append(a.providers, newOpenAIProvider(cfg.OpenAIAPIKey, timeout))
	}

	for _, opt := range opts {
		opt(a)
	}

	if len(a.providers) == 0 {
		return nil, ErrNoProviderConfigured
	}
	return a, nil
}

// Analyze generates content for the given transcript. filenameHint, when
// non-empty, is included in the prompt as context.
//
// Each provider failure is logged and the next provider tried; only the
// exhaustion of every provider returns an error (ErrAllProvidersFailed).
func (a *Analyzer) Analyze(ctx context.Context, transcript, filenameHint string) (Analysis, error) {
	if strings.TrimSpace(transcript) == "" {
		return Analysis{}, ErrEmptyTranscript
	}

	prompt := buildPrompt(transcript, filenameHint)

	var lastErr error
	for _, p := range a.providers {
		raw, err := p.Generate(ctx, prompt)
		if err != nil {
			fmt.Fprintf(a.stderr, "Provider %s failed: %v\n", p.Name(), err)
			lastErr = err
			continue
		}

		result := parseResponse(raw)
		result.Provider = p.Name()
		return result, nil
	}

	return Analysis{}, fmt.Errorf("%w: last error: %v", ErrAllProvidersFailed, lastErr)
}

// Providers returns the names of the configured providers in fallback order.
func (a *Analyzer) Providers() []string {
	names := make([]string, 0, len(a.providers))
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return names
}
