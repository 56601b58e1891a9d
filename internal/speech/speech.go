// Package speech wraps the Google Speech-to-Text REST API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/titulyzer/titulyzer/internal/apierr"
)

// NoSpeechText is returned when the provider finds no recognizable speech.
// Silence is not an error.
const NoSpeechText = "Nenhuma transcrição foi possível para este áudio."

// ErrForceChunking signals that the payload exceeded a provider limit and
// the caller should retry with the chunked strategy. It is never surfaced
// past the transcription orchestrator.
var ErrForceChunking = errors.New("audio exceeds provider limit, chunking required")

// defaultBaseURL is the Google Speech-to-Text endpoint.
const defaultBaseURL = "https://speech.googleapis.com"

// defaultChunkingTriggers are substrings of provider error messages that
// indicate a payload-too-large/duration-too-long condition. The provider
// does not document this limit, so the trigger phrases stay configurable.
var defaultChunkingTriggers = []string{"too long", "limit"}

// Response size limit to prevent OOM from malformed responses (10MB).
const maxResponseSize = 10 * 1024 * 1024

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recognizer converts audio bytes into text.
type Recognizer interface {
	// Recognize transcribes base64-encoded LINEAR16 audio.
	// A response with no results yields NoSpeechText, not an error.
	Recognize(ctx context.Context, base64Content string) (string, error)
}

// Compile-time interface compliance check.
var _ Recognizer = (*Client)(nil)

// Client calls the Google Speech-to-Text recognize endpoint.
type Client struct {
	apiKey           string
	baseURL          string
	languageCode     string
	sampleRateHertz  int
	chunkingTriggers []string
	httpClient       httpDoer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing or proxies).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithChunkingTriggers overrides the error-message substrings that force
// the chunked strategy.
func WithChunkingTriggers(triggers []string) Option {
	return func(c *Client) {
		if len(triggers) > 0 {
			c.chunkingTriggers = triggers
		}
	}
}

// withHTTPClient sets a custom HTTP client (for testing).
func withHTTPClient(client httpDoer) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// ErrEmptyAPIKey indicates that the API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")

// NewClient creates a speech recognition client.
// languageCode and sampleRateHertz describe the audio the caller submits;
// they are fixed per process, not per request.
func NewClient(apiKey, languageCode string, sampleRateHertz int, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	c := &Client{
		apiKey:           apiKey,
		baseURL:          defaultBaseURL,
		languageCode:     languageCode,
		sampleRateHertz:  sampleRateHertz,
		chunkingTriggers: defaultChunkingTriggers,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		// No client-level timeout; callers bound each request via context.
		c.httpClient = &http.Client{}
	}
	return c, nil
}

// recognizeRequest is the provider's request schema.
type recognizeRequest struct {
	Audio  recognizeAudio  `json:"audio"`
	Config recognizeConfig `json:"config"`
}

type recognizeAudio struct {
	Content string `json:"content"`
}

type recognizeConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

// recognizeResponse is the provider's response schema. Results may be empty.
type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// recognizeErrorResponse is the provider's error schema.
type recognizeErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Recognize transcribes base64-encoded LINEAR16 audio.
//
// A response with zero results returns NoSpeechText. A provider error whose
// message indicates a payload-too-long condition returns ErrForceChunking so
// the caller can retry with the chunked strategy; every other error is
// classified and propagated.
func (c *Client) Recognize(ctx context.Context, base64Content string) (string, error) {
	reqBody := recognizeRequest{
		Audio: recognizeAudio{Content: base64Content},
		Config: recognizeConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            c.sampleRateHertz,
			LanguageCode:               c.languageCode,
			EnableAutomaticPunctuation: true,
		},
	}

	resp, err := c.callAPI(ctx, reqBody)
	if err != nil {
		if c.isChunkingTrigger(err) {
			return "", fmt.Errorf("%v: %w", err, ErrForceChunking)
		}
		return "", apierr.Classify(err)
	}

	texts := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		texts = append(texts, result.Alternatives[0].Transcript)
	}
	if len(texts) == 0 {
		return NoSpeechText, nil
	}
	return strings.Join(texts, " "), nil
}

// isChunkingTrigger reports whether err is a 400-class provider error whose
// message matches one of the configured trigger phrases.
func (c *Client) isChunkingTrigger(err error) bool {
	var httpErr *apierr.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(httpErr.Message)
	for _, trigger := range c.chunkingTriggers {
		if strings.Contains(msg, trigger) {
			return true
		}
	}
	return false
}

// callAPI posts a recognize request and decodes the response.
func (c *Client) callAPI(ctx context.Context, reqBody recognizeRequest) (_ *recognizeResponse, err error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/speech:recognize?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp.StatusCode, respBody)
	}

	var result recognizeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}

// parseError extracts the provider message from an error response body.
func parseError(statusCode int, body []byte) *apierr.HTTPError {
	var errResp recognizeErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &apierr.HTTPError{StatusCode: statusCode, Message: string(body)}
	}
	return &apierr.HTTPError{StatusCode: statusCode, Message: errResp.Error.Message}
}
