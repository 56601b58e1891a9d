// Package cli wires the analysis pipeline behind cobra commands.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/titulyzer/titulyzer/internal/analyze"
	"github.com/titulyzer/titulyzer/internal/audio"
	"github.com/titulyzer/titulyzer/internal/config"
	"github.com/titulyzer/titulyzer/internal/ffmpeg"
	"github.com/titulyzer/titulyzer/internal/pipeline"
	"github.com/titulyzer/titulyzer/internal/speech"
	"github.com/titulyzer/titulyzer/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing commands in isolation.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	FFmpegResolver  FFmpegResolver
	PipelineFactory PipelineFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context, explicitPath string) (string, error)
	// CheckVersion returns a non-empty warning when the binary looks too old.
	CheckVersion(ctx context.Context, ffmpegPath string) string
}

// Runner processes one video end to end.
type Runner interface {
	Run(ctx context.Context, videoPath string) (pipeline.Result, error)
}

// PipelineFactory assembles a Runner from configuration.
type PipelineFactory interface {
	NewPipeline(cfg config.Config, ffmpegPath string, store pipeline.Store, stderr io.Writer) (Runner, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithPipelineFactory sets the pipeline factory.
func WithPipelineFactory(f PipelineFactory) EnvOption {
	return func(e *Env) {
		e.PipelineFactory = f
	}
}

// DefaultEnv creates an Env with production defaults.
func DefaultEnv() *Env {
	return NewEnv()
}

// NewEnv creates an Env with production defaults, then applies opts.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{
		Stderr:          os.Stderr,
		Getenv:          os.Getenv,
		Now:             time.Now,
		FFmpegResolver:  &defaultFFmpegResolver{exec: ffmpeg.NewExecutor()},
		PipelineFactory: &defaultPipelineFactory{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultFFmpegResolver locates ffmpeg on PATH or at an explicit location.
type defaultFFmpegResolver struct {
	exec *ffmpeg.Executor
}

func (r *defaultFFmpegResolver) Resolve(ctx context.Context, explicitPath string) (string, error) {
	return ffmpeg.Resolve(explicitPath)
}

func (r *defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) string {
	return ffmpeg.CheckVersion(ctx, r.exec, ffmpegPath)
}

// defaultPipelineFactory assembles the production pipeline.
type defaultPipelineFactory struct{}

func (f *defaultPipelineFactory) NewPipeline(cfg config.Config, ffmpegPath string, store pipeline.Store, stderr io.Writer) (Runner, error) {
	exec := ffmpeg.NewExecutor()
	extractor := ffmpeg.NewExtractor(ffmpegPath, exec)

	segmenter, err := audio.NewSegmenter(ffmpegPath, exec)
	if err != nil {
		return nil, err
	}

	recognizer, err := speech.NewClient(cfg.SpeechAPIKey, cfg.LanguageCode, cfg.SampleRateHertz)
	if err != nil {
		return nil, err
	}

	transcriber := transcribe.NewChunkedTranscriber(recognizer, segmenter, extractor,
		transcribe.WithDirectLimit(cfg.DirectBase64Limit),
		transcribe.WithChunkSeconds(cfg.ChunkSeconds),
		transcribe.WithTimeouts(cfg.DirectTimeout, cfg.ChunkTimeout),
		transcribe.WithStderr(stderr),
	)

	analyzer, err := analyze.NewAnalyzer(analyze.Config{
		GroqAPIKey:      cfg.GroqAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		PromptCharLimit: cfg.PromptCharLimit,
		Timeout:         cfg.LLMTimeout,
	}, analyze.WithStderr(stderr))
	if err != nil {
		return nil, err
	}

	return pipeline.New(extractor, extractor, transcriber, analyzer, store,
		pipeline.WithStderr(stderr)), nil
}
