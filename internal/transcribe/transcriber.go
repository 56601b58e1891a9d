// Package transcribe turns an extracted audio file into a transcript,
// deciding between direct and chunked recognition.
package transcribe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/titulyzer/titulyzer/internal/audio"
	"github.com/titulyzer/titulyzer/internal/speech"
)

// ErrFileNotFound indicates the input audio file does not exist.
var ErrFileNotFound = errors.New("audio file not found")

// Default strategy tunables. The base64 limit tracks the speech provider's
// undocumented synchronous-recognize payload limit.
const (
	defaultDirectBase64Limit = 5 * 1024 * 1024
	defaultChunkSeconds      = 45
	defaultDirectTimeout     = 5 * time.Minute
	defaultChunkTimeout      = 2 * time.Minute
)

// Transcriber converts an audio file into text.
type Transcriber interface {
	// Transcribe transcribes the audio file at audioPath.
	// Returns ErrFileNotFound if the file does not exist.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// segmenter materializes planned windows as chunk files under dir.
type segmenter interface {
	Materialize(ctx context.Context, sourcePath, dir string, w audio.Window, index int) (audio.Chunk, error)
}

// prober returns the total duration of an audio file.
type prober interface {
	ProbeDuration(ctx context.Context, audioPath string) (time.Duration, error)
}

// Compile-time interface compliance check.
var _ Transcriber = (*ChunkedTranscriber)(nil)

// ChunkedTranscriber transcribes audio via the speech provider, splitting
// large files into fixed-length chunks transcribed sequentially. Chunk
// recognition failures degrade the transcript instead of aborting it.
type ChunkedTranscriber struct {
	recognizer speech.Recognizer
	segmenter  segmenter
	prober     prober

	directLimit   int
	chunkSeconds  int
	directTimeout time.Duration
	chunkTimeout  time.Duration
	stderr        io.Writer
}

// Option configures a ChunkedTranscriber.
type Option func(*ChunkedTranscriber)

// WithDirectLimit sets the maximum base64-encoded size for direct recognition.
func WithDirectLimit(limit int) Option {
	return func(t *ChunkedTranscriber) {
		if limit > 0 {
			t.directLimit = limit
		}
	}
}

// WithChunkSeconds sets the nominal chunk length in seconds.
func WithChunkSeconds(seconds int) Option {
	return func(t *ChunkedTranscriber) {
		if seconds > 0 {
			t.chunkSeconds = seconds
		}
	}
}

// WithTimeouts sets the per-call timeouts for direct and chunk recognition.
func WithTimeouts(direct, chunk time.Duration) Option {
	return func(t *ChunkedTranscriber) {
		if direct > 0 {
			t.directTimeout = direct
		}
		if chunk > 0 {
			t.chunkTimeout = chunk
		}
	}
}

// WithStderr sets the writer for progress and warning output.
func WithStderr(w io.Writer) Option {
	return func(t *ChunkedTranscriber) {
		t.stderr = w
	}
}

// NewChunkedTranscriber creates a transcriber over the given collaborators.
func NewChunkedTranscriber(r speech.Recognizer, s segmenter, p prober, opts ...Option) *ChunkedTranscriber {
	t := &ChunkedTranscriber{
		recognizer:    r,
		segmenter:     s,
		prober:        p,
		directLimit:   defaultDirectBase64Limit,
		chunkSeconds:  defaultChunkSeconds,
		directTimeout: defaultDirectTimeout,
		chunkTimeout:  defaultChunkTimeout,
		stderr:        os.Stderr,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe transcribes the audio file at audioPath.
//
// Small payloads (base64 size at or under the direct limit) are sent in one
// recognize call; larger payloads, or a direct call the provider rejects as
// too long, fall back to the chunked strategy. Only file-not-found, probe
// or segmentation failure, and direct-path transport errors are fatal.
func (t *ChunkedTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, audioPath)
		}
		return "", fmt.Errorf("cannot access audio file: %w", err)
	}

	content, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("cannot read audio file: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(content)

	if len(encoded) > t.directLimit {
		fmt.Fprintf(t.stderr, "Audio too large for direct recognition (%d MB base64), chunking...\n",
			len(encoded)/(1024*1024))
		return t.transcribeChunked(ctx, audioPath)
	}

	text, err := t.recognizeWithTimeout(ctx, encoded, t.directTimeout)
	if err != nil {
		if errors.Is(err, speech.ErrForceChunking) {
			fmt.Fprintln(t.stderr, "Provider rejected direct recognition, retrying with chunks...")
			return t.transcribeChunked(ctx, audioPath)
		}
		return "", err
	}
	return text, nil
}

// transcribeChunked probes the total duration, materializes fixed-length
// chunks, and transcribes them sequentially. Each call gets its own chunk
// directory, so concurrent transcriptions through a shared segmenter never
// touch each other's files. The directory is deleted before returning,
// whether the call succeeds or fails.
func (t *ChunkedTranscriber) transcribeChunked(ctx context.Context, audioPath string) (_ string, err error) {
	total, err := t.prober.ProbeDuration(ctx, audioPath)
	if err != nil {
		return "", err
	}

	nominal := time.Duration(t.chunkSeconds) * time.Second
	windows := audio.PlanWindows(total, nominal)
	fmt.Fprintf(t.stderr, "Transcribing %d chunks of %ds...\n", len(windows), t.chunkSeconds)

	chunkDir, err := audio.NewChunkDir()
	if err != nil {
		return "", err
	}
	defer func() {
		if cleanupErr := audio.RemoveChunkDir(chunkDir); cleanupErr != nil {
			fmt.Fprintf(t.stderr, "Warning: failed to cleanup chunks: %v\n", cleanupErr)
		}
	}()

	var fragments []string
	for i, w := range windows {
		chunk, err := t.segmenter.Materialize(ctx, audioPath, chunkDir, w, i)
		if err != nil {
			return "", err
		}

		text, err := t.transcribeChunk(ctx, chunk)
		if err != nil {
			// One bad chunk degrades the transcript; it does not abort it.
			fmt.Fprintf(t.stderr, "Warning: %s failed: %v\n", chunk, err)
			continue
		}
		if text != "" && text != speech.NoSpeechText {
			fragments = append(fragments, text)
		}
	}

	if len(fragments) == 0 {
		return speech.NoSpeechText, nil
	}
	return strings.Join(fragments, "\n\n"), nil
}

// transcribeChunk reads and recognizes a single chunk file.
func (t *ChunkedTranscriber) transcribeChunk(ctx context.Context, chunk audio.Chunk) (string, error) {
	content, err := os.ReadFile(chunk.Path)
	if err != nil {
		return "", fmt.Errorf("read chunk: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(content)
	return t.recognizeWithTimeout(ctx, encoded, t.chunkTimeout)
}

// recognizeWithTimeout bounds a single recognize call.
func (t *ChunkedTranscriber) recognizeWithTimeout(ctx context.Context, encoded string, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return t.recognizer.Recognize(callCtx, encoded)
}
