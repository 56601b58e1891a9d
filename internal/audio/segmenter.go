// Package audio plans and materializes time-bounded chunks of an audio
// file for independent transcription.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/titulyzer/titulyzer/internal/ffmpeg"
)

// ErrSegmentationFailed indicates FFmpeg failed while materializing a chunk.
var ErrSegmentationFailed = errors.New("audio segmentation failed")

// Window is a planned time slice of the source audio.
type Window struct {
	Start  time.Duration // Offset into the source audio.
	Length time.Duration // Nominal length; the last window may be shorter.
}

// Chunk represents a segment of audio extracted to its own file.
// The caller is responsible for cleaning up chunk files after use.
type Chunk struct {
	Path   string        // Absolute path to the chunk file.
	Index  int           // Zero-based index for ordering.
	Start  time.Duration // Start timestamp in the source audio.
	Length time.Duration // Requested window length.
}

// String returns a human-readable representation for logging.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d: %s+%s", c.Index, formatDuration(c.Start), formatDuration(c.Length))
}

// formatDuration formats a duration as HH:MM:SS or MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// PlanWindows computes the chunk plan for an audio file of the given total
// duration: ceil(total/nominal) non-overlapping windows of nominal length
// tiling [0, total) exactly, with only the last window possibly shorter.
func PlanWindows(total, nominal time.Duration) []Window {
	if total <= 0 || nominal <= 0 {
		return nil
	}

	count := int((total + nominal - 1) / nominal)
	windows := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		start := time.Duration(i) * nominal
		length := nominal
		if start+length > total {
			length = total - start
		}
		windows = append(windows, Window{Start: start, Length: length})
	}
	return windows
}

// Segmenter materializes planned windows as standalone audio files using
// FFmpeg, re-encoded to the format the speech provider expects. It holds no
// mutable state, so one Segmenter can serve concurrent transcriptions; each
// transcription brings its own chunk directory (see NewChunkDir).
type Segmenter struct {
	ffmpegPath string
	exec       *ffmpeg.Executor
}

// NewSegmenter creates a Segmenter.
func NewSegmenter(ffmpegPath string, exec *ffmpeg.Executor) (*Segmenter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	return &Segmenter{ffmpegPath: ffmpegPath, exec: exec}, nil
}

// NewChunkDir creates a fresh directory for one transcription's chunk files.
// The caller removes it with RemoveChunkDir when the transcription finishes.
func NewChunkDir() (string, error) {
	dir, err := os.MkdirTemp("", "titulyzer-*")
	if err != nil {
		return "", fmt.Errorf("create chunk directory: %w", err)
	}
	return dir, nil
}

// Materialize extracts the given window of sourcePath into its own WAV file
// under dir: mono, 16kHz, 16-bit PCM at 32k bitrate.
// Returns ErrSegmentationFailed if FFmpeg reports an error.
func (s *Segmenter) Materialize(ctx context.Context, sourcePath, dir string, w Window, index int) (Chunk, error) {
	chunkPath := filepath.Join(dir, fmt.Sprintf("chunk_%03d.wav", index))
	args := []string{
		"-y",
		"-ss", fmtSeconds(w.Start),
		"-i", sourcePath,
		"-t", fmtSeconds(w.Length),
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "32k",
		chunkPath,
	}
	if err := s.exec.Run(ctx, s.ffmpegPath, args); err != nil {
		return Chunk{}, fmt.Errorf("%w: chunk %d: %v", ErrSegmentationFailed, index, err)
	}

	return Chunk{Path: chunkPath, Index: index, Start: w.Start, Length: w.Length}, nil
}

// fmtSeconds formats a duration for FFmpeg -ss/-t arguments.
func fmtSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// RemoveChunkDir deletes a chunk directory and everything in it.
// Directories this package did not create are left alone.
func RemoveChunkDir(dir string) error {
	if dir == "" {
		return nil
	}

	// Safety check: only remove directories NewChunkDir created.
	if !strings.Contains(filepath.Base(dir), "titulyzer-") {
		return nil
	}

	return os.RemoveAll(dir)
}
