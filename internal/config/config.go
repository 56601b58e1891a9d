// Package config holds the process-wide configuration for the analysis
// pipeline. It is loaded once at startup from environment variables and
// injected into every component; business logic never reads the
// environment directly.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Environment variable names.
const (
	EnvSpeechAPIKey = "GOOGLE_SPEECH_API_KEY"
	EnvGroqAPIKey   = "GROQ_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvLanguageCode = "LANGUAGE_CODE"
	EnvChunkSeconds = "CHUNK_DURATION"
	EnvFFmpegPath   = "FFMPEG_PATH"
)

// Defaults mirror the tunables the pipeline was built around. The 5 MiB
// direct-transcription threshold and the "too long"/"limit" trigger phrases
// track an undocumented provider limit, so they stay configurable rather
// than hardcoded at the call sites.
const (
	// DefaultLanguageCode is the working language for transcription and
	// generated content.
	DefaultLanguageCode = "pt-BR"

	// DefaultSampleRateHertz matches the mono/16kHz/16-bit PCM audio the
	// extractor produces.
	DefaultSampleRateHertz = 16000

	// DefaultChunkSeconds is the nominal chunk length for chunked transcription.
	DefaultChunkSeconds = 45

	// DefaultDirectBase64Limit is the maximum base64-encoded payload size
	// for direct (non-chunked) transcription.
	DefaultDirectBase64Limit = 5 * 1024 * 1024

	// DefaultPromptCharLimit caps the prompt size sent to the Groq API.
	DefaultPromptCharLimit = 8000

	// DefaultDirectTimeout bounds a direct transcription call.
	DefaultDirectTimeout = 5 * time.Minute

	// DefaultChunkTimeout bounds a per-chunk transcription call.
	DefaultChunkTimeout = 2 * time.Minute

	// DefaultLLMTimeout bounds a single content-generation call.
	DefaultLLMTimeout = 30 * time.Second
)

// ErrNoSpeechKey indicates GOOGLE_SPEECH_API_KEY is not set.
var ErrNoSpeechKey = errors.New("GOOGLE_SPEECH_API_KEY environment variable not set")

// Config is the explicit configuration injected into the pipeline components.
// Read-only after Load.
type Config struct {
	// Speech-to-text.
	SpeechAPIKey    string
	LanguageCode    string
	SampleRateHertz int

	// Content-generation provider credentials. An empty key disables the
	// provider; at least one must be set for analysis to be constructible.
	GroqAPIKey   string
	GeminiAPIKey string
	OpenAIAPIKey string

	// Transcription strategy tunables.
	ChunkSeconds      int
	DirectBase64Limit int
	PromptCharLimit   int

	// Per-call timeouts.
	DirectTimeout time.Duration
	ChunkTimeout  time.Duration
	LLMTimeout    time.Duration

	// External tooling.
	FFmpegPath string
}

// Load builds a Config from the given environment getter, applying defaults
// for everything not set. getenv is injected so tests can run hermetically.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		SpeechAPIKey:      getenv(EnvSpeechAPIKey),
		GroqAPIKey:        getenv(EnvGroqAPIKey),
		GeminiAPIKey:      getenv(EnvGeminiAPIKey),
		OpenAIAPIKey:      getenv(EnvOpenAIAPIKey),
		LanguageCode:      DefaultLanguageCode,
		SampleRateHertz:   DefaultSampleRateHertz,
		ChunkSeconds:      DefaultChunkSeconds,
		DirectBase64Limit: DefaultDirectBase64Limit,
		PromptCharLimit:   DefaultPromptCharLimit,
		DirectTimeout:     DefaultDirectTimeout,
		ChunkTimeout:      DefaultChunkTimeout,
		LLMTimeout:        DefaultLLMTimeout,
		FFmpegPath:        getenv(EnvFFmpegPath),
	}

	if lang := getenv(EnvLanguageCode); lang != "" {
		cfg.LanguageCode = lang
	}

	if raw := getenv(EnvChunkSeconds); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q: must be a positive integer", EnvChunkSeconds, raw)
		}
		cfg.ChunkSeconds = seconds
	}

	return cfg, nil
}

// Validate checks that the configuration can support transcription.
// Content-generation credentials are validated by the analyzer constructor,
// which knows the provider fallback order.
func (c Config) Validate() error {
	if c.SpeechAPIKey == "" {
		return ErrNoSpeechKey
	}
	return nil
}

// HasAnyProvider reports whether at least one content-generation provider
// is configured.
func (c Config) HasAnyProvider() bool {
	return c.GroqAPIKey != "" || c.GeminiAPIKey != "" || c.OpenAIAPIKey != ""
}
