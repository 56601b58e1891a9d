package ffmpeg

import "errors"

// ErrNotFound indicates the FFmpeg binary could not be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrExtractionFailed indicates FFmpeg failed while extracting or converting audio.
var ErrExtractionFailed = errors.New("audio extraction failed")

// ErrProbeFailed indicates the audio duration could not be determined.
var ErrProbeFailed = errors.New("duration probe failed")
