package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/titulyzer/titulyzer/internal/analyze"
	"github.com/titulyzer/titulyzer/internal/apierr"
	"github.com/titulyzer/titulyzer/internal/audio"
	"github.com/titulyzer/titulyzer/internal/cli"
	"github.com/titulyzer/titulyzer/internal/config"
	"github.com/titulyzer/titulyzer/internal/ffmpeg"
	"github.com/titulyzer/titulyzer/internal/pipeline"
	"github.com/titulyzer/titulyzer/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitTranscription = 5
	ExitAnalysis      = 6
	ExitInterrupt     = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "titulyzer",
		Short:   "Transcribe videos and generate YouTube titles and descriptions",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.AnalyzeCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Interrupt.
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors: Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: missing tooling or credentials.
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, config.ErrNoSpeechKey) ||
		errors.Is(err, analyze.ErrNoProviderConfigured) || errors.Is(err, apierr.ErrAuthFailed) {
		return ExitSetup
	}

	// Validation errors.
	if errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrUnsupportedFormat) ||
		errors.Is(err, pipeline.ErrVideoNotFound) || errors.Is(err, transcribe.ErrFileNotFound) ||
		errors.Is(err, pipeline.ErrRecordExists) {
		return ExitValidation
	}

	// Transcription errors.
	if errors.Is(err, ffmpeg.ErrExtractionFailed) || errors.Is(err, ffmpeg.ErrProbeFailed) ||
		errors.Is(err, audio.ErrSegmentationFailed) || errors.Is(err, apierr.ErrRateLimit) ||
		errors.Is(err, apierr.ErrQuotaExceeded) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrBadRequest) {
		return ExitTranscription
	}

	// Content-generation errors.
	if errors.Is(err, analyze.ErrAllProvidersFailed) || errors.Is(err, analyze.ErrEmptyTranscript) {
		return ExitAnalysis
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors. Cobra doesn't expose typed errors, so string matching
// is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"accepts ",
	"requires at least",
	"requires at most",
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
