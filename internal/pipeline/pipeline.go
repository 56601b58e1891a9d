// Package pipeline coordinates the full video analysis flow: audio
// extraction, transcription, content generation, and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/titulyzer/titulyzer/internal/analyze"
	"github.com/titulyzer/titulyzer/internal/transcribe"
)

// ErrVideoNotFound indicates the input video file does not exist.
var ErrVideoNotFound = errors.New("video file not found")

// Record is the persisted outcome of one video analysis.
type Record struct {
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"originalName"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Summary       string    `json:"summary"`
	Tags          []string  `json:"tags"`
	AIModel       string    `json:"aiModel"`
	Transcription string    `json:"transcription"`
	Duration      float64   `json:"duration,omitempty"`
	FileSize      int64     `json:"fileSize,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Store persists finished analysis records. The document store itself is
// external; this boundary only writes.
type Store interface {
	Save(ctx context.Context, rec Record) error
}

// extractor converts a video file into a mono 16 kHz WAV file.
type extractor interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
}

// prober returns the total duration of an audio file.
type prober interface {
	ProbeDuration(ctx context.Context, audioPath string) (time.Duration, error)
}

// analyzer generates content for a transcript.
type analyzer interface {
	Analyze(ctx context.Context, transcript, filenameHint string) (analyze.Analysis, error)
}

// Pipeline runs one video end to end. Collaborators are injected so each
// stage can be mocked independently.
type Pipeline struct {
	extractor   extractor
	prober      prober
	transcriber transcribe.Transcriber
	analyzer    analyzer
	store       Store

	now    func() time.Time
	stderr io.Writer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStderr sets the writer for progress output.
func WithStderr(w io.Writer) Option {
	return func(p *Pipeline) {
		p.stderr = w
	}
}

// withNow replaces the clock (for testing).
func withNow(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline over the given collaborators. store may be nil,
// in which case results are not persisted.
func New(e extractor, pr prober, t transcribe.Transcriber, a analyzer, store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		prober:      pr,
		transcriber: t,
		analyzer:    a,
		store:       store,
		now:         time.Now,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of a pipeline run.
type Result struct {
	Record     Record
	Transcript string
}

// Run processes the video at videoPath: extract audio, transcribe, generate
// content, persist. The intermediate WAV file is removed before returning,
// success or failure. A failed persistence fails the run; a failed WAV
// cleanup only logs a warning.
func (p *Pipeline) Run(ctx context.Context, videoPath string) (Result, error) {
	info, err := os.Stat(videoPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("%w: %s", ErrVideoNotFound, videoPath)
		}
		return Result{}, fmt.Errorf("cannot access video file: %w", err)
	}

	base := filepath.Base(videoPath)
	audioPath, err := tempWavPath(base)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if rmErr := os.Remove(audioPath); rmErr != nil && !os.IsNotExist(rmErr) {
			fmt.Fprintf(p.stderr, "Warning: failed to remove %s: %v\n", audioPath, rmErr)
		}
	}()

	fmt.Fprintf(p.stderr, "Extracting audio from %s...\n", base)
	if err := p.extractor.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return Result{}, err
	}

	var durationSecs float64
	if d, err := p.prober.ProbeDuration(ctx, audioPath); err != nil {
		fmt.Fprintf(p.stderr, "Warning: could not probe duration: %v\n", err)
	} else {
		durationSecs = d.Seconds()
	}

	fmt.Fprintln(p.stderr, "Transcribing audio...")
	transcript, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return Result{}, err
	}

	fmt.Fprintln(p.stderr, "Generating content...")
	analysis, err := p.analyzer.Analyze(ctx, transcript, base)
	if err != nil {
		return Result{}, err
	}

	rec := Record{
		Filename:      recordName(base),
		OriginalName:  base,
		Title:         analysis.Title,
		Description:   analysis.Description,
		Summary:       analysis.Summary,
		Tags:          analysis.Tags,
		AIModel:       analysis.Provider,
		Transcription: transcript,
		Duration:      durationSecs,
		FileSize:      info.Size(),
		CreatedAt:     p.now(),
	}

	if p.store != nil {
		if err := p.store.Save(ctx, rec); err != nil {
			return Result{}, fmt.Errorf("save analysis: %w", err)
		}
	}

	return Result{Record: rec, Transcript: transcript}, nil
}

// tempWavPath returns a fresh path for the intermediate WAV file.
func tempWavPath(base string) (string, error) {
	f, err := os.CreateTemp("", "titulyzer-"+recordName(base)+"-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp audio file: %w", err)
	}
	return path, nil
}

// recordName strips the extension from a video filename.
func recordName(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base))
}
