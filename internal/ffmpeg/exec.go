package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// runOutputFn is the function type for running a command and capturing stderr.
type runOutputFn func(ctx context.Context, path string, args []string) (string, error)

// runCommandFn is the function type for running an effectful command.
type runCommandFn func(ctx context.Context, path string, args []string) error

// Executor runs FFmpeg commands with injectable dependencies.
type Executor struct {
	runOutput  runOutputFn
	runCommand runCommandFn
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunOutput sets a custom runOutput function (for testing).
func WithRunOutput(fn runOutputFn) ExecutorOption {
	return func(e *Executor) { e.runOutput = fn }
}

// WithRunCommand sets a custom runCommand function (for testing).
func WithRunCommand(fn runCommandFn) ExecutorOption {
	return func(e *Executor) { e.runCommand = fn }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		runOutput:  defaultRunOutput,
		runCommand: defaultRunCommand,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOutput executes FFmpeg and captures its stderr output.
// FFmpeg writes most diagnostic output (including probe info) to stderr.
func (e *Executor) RunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	return e.runOutput(ctx, ffmpegPath, args)
}

// Run executes FFmpeg for its side effect, returning an error that includes
// FFmpeg's output when the command fails.
func (e *Executor) Run(ctx context.Context, ffmpegPath string, args []string) error {
	return e.runCommand(ctx, ffmpegPath, args)
}

// defaultRunOutput is the production implementation of runOutput.
// Returns captured output even when the command fails, since FFmpeg returns
// non-zero exit codes for some valid operations (e.g., -i with no output).
// Both streams are captured: probe info goes to stderr, -version to stdout.
func defaultRunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()

	// Return the output regardless of error - it contains the useful data.
	return buf.String(), err
}

// defaultRunCommand is the production implementation of runCommand.
func defaultRunCommand(ctx context.Context, ffmpegPath string, args []string) error {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w\nOutput: %s", err, string(output))
	}
	return nil
}
