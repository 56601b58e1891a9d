package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrFileNotFound indicates a specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates a video file has an unsupported extension.
	ErrUnsupportedFormat = errors.New("unsupported video format")

	// ErrBatchFailed indicates one or more files in a batch failed.
	ErrBatchFailed = errors.New("batch processing failed")
)
