package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Extractor converts uploaded videos into the audio format the speech
// provider expects and probes audio durations.
type Extractor struct {
	ffmpegPath string
	exec       *Executor
}

// NewExtractor creates an Extractor using the given FFmpeg binary.
func NewExtractor(ffmpegPath string, exec *Executor) *Extractor {
	return &Extractor{ffmpegPath: ffmpegPath, exec: exec}
}

// ExtractAudio writes the audio track of inputPath to outputWav as
// mono, 16kHz, 16-bit PCM WAV.
// Returns ErrExtractionFailed if FFmpeg reports an error.
func (x *Extractor) ExtractAudio(ctx context.Context, inputPath, outputWav string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outputWav,
	}
	if err := x.exec.Run(ctx, x.ffmpegPath, args); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return nil
}

// ProbeDuration returns the duration of an audio file.
// Uses ffmpeg rather than ffprobe, which may not be installed alongside it;
// the -i flag with a null output prints file info including duration.
// Returns ErrProbeFailed if the duration cannot be determined.
func (x *Extractor) ProbeDuration(ctx context.Context, audioPath string) (time.Duration, error) {
	args := []string{
		"-i", audioPath,
		"-f", "null", "-",
	}
	output, err := x.exec.RunOutput(ctx, x.ffmpegPath, args)

	d, parseErr := parseDurationOutput(output)
	if parseErr != nil {
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrProbeFailed, err)
		}
		return 0, fmt.Errorf("%w: %v", ErrProbeFailed, parseErr)
	}
	return d, nil
}

// Duration patterns in FFmpeg output:
//
//	Duration: 00:05:23.45
//	time=00:05:23.45 (progress lines; the last one is the final time)
var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	timeRe     = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// parseDurationOutput extracts the duration from FFmpeg diagnostic output.
func parseDurationOutput(output string) (time.Duration, error) {
	if matches := durationRe.FindStringSubmatch(output); matches != nil {
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4])
	}

	allMatches := timeRe.FindAllStringSubmatch(output, -1)
	if len(allMatches) > 0 {
		matches := allMatches[len(allMatches)-1]
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4])
	}

	return 0, fmt.Errorf("could not parse duration from ffmpeg output")
}

// parseTimeComponents converts HH:MM:SS.frac strings to a Duration.
func parseTimeComponents(hours, minutes, seconds, frac string) (time.Duration, error) {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	// The fractional part may carry 1-6 digits; normalize to milliseconds.
	for len(frac) > 3 {
		frac = frac[:len(frac)-1]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	ms, _ := strconv.Atoi(frac)

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
