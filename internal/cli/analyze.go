package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/titulyzer/titulyzer/internal/config"
	"github.com/titulyzer/titulyzer/internal/pipeline"
)

// MaxRecommendedParallel bounds concurrent video pipelines. Each pipeline
// spawns FFmpeg processes and API calls, so higher values rarely help.
const MaxRecommendedParallel = 10

// supportedFormats lists video container formats FFmpeg extracts audio from.
var supportedFormats = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".wmv":  true,
	".flv":  true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// clampParallel constrains parallel pipeline count to [1, MaxRecommendedParallel].
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxRecommendedParallel {
		return MaxRecommendedParallel
	}
	return n
}

// AnalyzeCmd creates the analyze command.
// The env parameter provides injectable dependencies for testing.
func AnalyzeCmd(env *Env) *cobra.Command {
	var (
		outputDir string
		parallel  int
		noSave    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <video-file>...",
		Short: "Transcribe videos and generate YouTube content",
		Long: `Extract audio from one or more videos, transcribe the speech, and generate
a title, description, summary, and tags with an AI provider.

Audio is sent to Google Speech-to-Text, chunked automatically when too large
for a single request. Content generation falls back across Groq, Gemini, and
OpenAI in that order, depending on which API keys are configured.

Each result is saved as a JSON document in the output directory.

Supported formats: avi, flv, m4v, mkv, mov, mp4, mpeg, mpg, webm, wmv`,
		Example: `  titulyzer analyze talk.mp4
  titulyzer analyze talk.mp4 -d results
  titulyzer analyze ep1.mp4 ep2.mp4 ep3.mp4 -p 3
  titulyzer analyze talk.mp4 --no-save  # Print only, don't persist`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, env, args, outputDir, parallel, noSave)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "analyses", "Directory for analysis JSON documents")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 2, "Max concurrent videos (1-10)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print results without persisting them")

	return cmd
}

// runAnalyze executes the analysis pipeline for every input video.
// Validation order: files exist -> formats -> config -> API keys -> parallel -> ffmpeg
func runAnalyze(cmd *cobra.Command, env *Env, inputPaths []string, outputDir string, parallel int, noSave bool) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. All files exist
	for _, p := range inputPaths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, p)
			}
			return fmt.Errorf("cannot access input file: %w", err)
		}
	}

	// 2. All formats supported
	for _, p := range inputPaths {
		ext := strings.ToLower(filepath.Ext(p))
		if !supportedFormats[ext] {
			return fmt.Errorf("unsupported format %q (supported: %s): %w",
				ext, supportedFormatsList(), ErrUnsupportedFormat)
		}
	}

	// 3. Configuration
	cfg, err := config.Load(env.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w (set it with: export %s=...)", err, config.EnvSpeechAPIKey)
	}
	if !cfg.HasAnyProvider() {
		return fmt.Errorf("no AI provider configured (set %s, %s, or %s)",
			config.EnvGroqAPIKey, config.EnvGeminiAPIKey, config.EnvOpenAIAPIKey)
	}

	// 4. Parallel bounds
	parallel = clampParallel(parallel)

	// === SETUP ===

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx, cfg.FFmpegPath)
	if err != nil {
		return err
	}
	if warning := env.FFmpegResolver.CheckVersion(ctx, ffmpegPath); warning != "" {
		fmt.Fprintf(env.Stderr, "Warning: %s\n", warning)
	}

	var store pipeline.Store
	if !noSave {
		fileStore, err := pipeline.NewFileStore(outputDir)
		if err != nil {
			return err
		}
		store = fileStore
	}

	runner, err := env.PipelineFactory.NewPipeline(cfg, ffmpegPath, store, env.Stderr)
	if err != nil {
		return err
	}

	// === PROCESSING ===

	if len(inputPaths) == 1 {
		result, err := runner.Run(ctx, inputPaths[0])
		if err != nil {
			return err
		}
		printResult(cmd, result)
		return nil
	}

	return runBatch(ctx, cmd, env, runner, inputPaths, parallel)
}

// runBatch processes several videos with bounded parallelism. A failed video
// does not stop the others; the batch fails only after all have finished.
func runBatch(ctx context.Context, cmd *cobra.Command, env *Env, runner Runner, inputPaths []string, parallel int) error {
	var mu sync.Mutex
	failures := make(map[string]error)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for _, path := range inputPaths {
		g.Go(func() error {
			result, err := runner.Run(gctx, path)
			if err != nil {
				fmt.Fprintf(env.Stderr, "Failed: %s: %v\n", path, err)
				mu.Lock()
				failures[path] = err
				mu.Unlock()
				return nil
			}
			mu.Lock()
			printResult(cmd, result)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if len(failures) > 0 {
		// Wrap the first failure so exit-code mapping still sees the cause.
		var first error
		for _, p := range inputPaths {
			if err, ok := failures[p]; ok {
				first = err
				break
			}
		}
		return fmt.Errorf("%w: %d of %d videos failed: %w",
			ErrBatchFailed, len(failures), len(inputPaths), first)
	}

	fmt.Fprintf(env.Stderr, "Done: %d videos analyzed\n", len(inputPaths))
	return nil
}

// printResult writes a human-readable summary of one analysis to stdout.
func printResult(cmd *cobra.Command, result pipeline.Result) {
	rec := result.Record
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", rec.OriginalName)
	fmt.Fprintf(out, "  Title:       %s\n", rec.Title)
	fmt.Fprintf(out, "  Summary:     %s\n", rec.Summary)
	fmt.Fprintf(out, "  Tags:        %s\n", strings.Join(rec.Tags, ", "))
	fmt.Fprintf(out, "  AI model:    %s\n", rec.AIModel)
	fmt.Fprintf(out, "  Description:\n%s\n", indent(rec.Description, "    "))
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
