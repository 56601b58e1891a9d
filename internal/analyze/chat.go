package analyze

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/titulyzer/titulyzer/internal/apierr"
)

// chatCompleter is an internal interface for OpenAI-style chat completion.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Shared request parameters for all chat-completion providers.
const (
	chatMaxTokens   = 1000
	chatTemperature = 0.7
)

// systemPrompt frames every chat-completion request.
const systemPrompt = "Você é um especialista em criação de conteúdo para YouTube. " +
	"Crie títulos chamativos e descrições envolventes baseadas na transcrição do vídeo."

// chatRequest builds the provider-independent chat completion request.
func chatRequest(model, prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	}
}

// completeChat executes one chat completion and returns the raw text.
func completeChat(ctx context.Context, client chatCompleter, model, prompt string) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, chatRequest(model, prompt))
	if err != nil {
		return "", classifyChatError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyChatError maps OpenAI-style API errors to sentinel errors.
func classifyChatError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// Distinguish temporary rate limits from quota (billing) issues.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}
