package analyze

import "io"

// Exports for black-box tests.

var (
	ParseResponse = parseResponse
	ExtractJSON   = extractJSON
	CleanText     = cleanText
	BuildPrompt   = buildPrompt
	LimitPrompt   = limitPrompt

	WithProviders     = withProviders
	ClassifyChatError = classifyChatError

	GroqModels = groqModels
)

// Provider re-exports the internal provider interface for mock chains.
type Provider = provider

// ChatCompleter re-exports the chat-completion interface for mocks.
type ChatCompleter = chatCompleter

// NewGroqProviderWithClient builds a Groq provider around an injected client.
func NewGroqProviderWithClient(client chatCompleter, promptLimit int, stderr io.Writer) *groqProvider {
	if promptLimit <= 0 {
		promptLimit = defaultPromptCharLimit
	}
	return &groqProvider{
		client:      client,
		models:      groqModels,
		promptLimit: promptLimit,
		stderr:      stderr,
	}
}
