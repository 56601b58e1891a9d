package cli_test

// Notes:
// - Black-box testing via package cli_test.
// - Commands run against a fully mocked Env; no FFmpeg, no network.

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/titulyzer/titulyzer/internal/cli"
	"github.com/titulyzer/titulyzer/internal/config"
	"github.com/titulyzer/titulyzer/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockResolver struct {
	path    string
	err     error
	warning string
}

func (m *mockResolver) Resolve(ctx context.Context, explicitPath string) (string, error) {
	return m.path, m.err
}

func (m *mockResolver) CheckVersion(ctx context.Context, ffmpegPath string) string {
	return m.warning
}

// mockRunner records processed paths and fails the ones listed in failPaths.
type mockRunner struct {
	mu        sync.Mutex
	paths     []string
	failPaths map[string]error
}

func (m *mockRunner) Run(ctx context.Context, videoPath string) (pipeline.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paths = append(m.paths, videoPath)
	if err, ok := m.failPaths[videoPath]; ok {
		return pipeline.Result{}, err
	}
	return pipeline.Result{
		Record: pipeline.Record{
			OriginalName: filepath.Base(videoPath),
			Title:        "Título de " + filepath.Base(videoPath),
			Summary:      "Resumo",
			Tags:         []string{"a", "b"},
			AIModel:      "groq",
			Description:  "Descrição",
		},
	}, nil
}

func (m *mockRunner) PathCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.paths)
}

type mockFactory struct {
	runner *mockRunner
	err    error

	mu     sync.Mutex
	stores []pipeline.Store
}

func (m *mockFactory) NewPipeline(cfg config.Config, ffmpegPath string, store pipeline.Store, stderr io.Writer) (cli.Runner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stores = append(m.stores, store)
	if m.err != nil {
		return nil, m.err
	}
	return m.runner, nil
}

// defaultTestEnv supplies the minimum viable configuration.
func defaultTestEnv(key string) string {
	switch key {
	case config.EnvSpeechAPIKey:
		return "speech-key"
	case config.EnvGroqAPIKey:
		return "groq-key"
	}
	return ""
}

func testEnv(runner *mockRunner) (*cli.Env, *mockFactory, *bytes.Buffer) {
	factory := &mockFactory{runner: runner}
	stderr := &bytes.Buffer{}
	env := cli.NewEnv(
		cli.WithStderr(stderr),
		cli.WithGetenv(defaultTestEnv),
		cli.WithFFmpegResolver(&mockResolver{path: "/usr/bin/ffmpeg"}),
		cli.WithPipelineFactory(factory),
	)
	return env, factory, stderr
}

// videoFile creates a fake video file with the given name.
func videoFile(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("failed to create video file: %v", err)
	}
	return path
}

// execute runs the analyze command with the given extra args.
func execute(t *testing.T, env *cli.Env, args ...string) (string, error) {
	t.Helper()

	cmd := cli.AnalyzeCmd(env)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestAnalyzeCmd_FileNotFound(t *testing.T) {
	t.Parallel()

	env, factory, _ := testEnv(&mockRunner{})

	_, err := execute(t, env, "/nonexistent/video.mp4", "--no-save")
	if !errors.Is(err, cli.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
	if len(factory.stores) != 0 {
		t.Errorf("pipeline built despite validation failure")
	}
}

func TestAnalyzeCmd_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(&mockRunner{})
	path := videoFile(t, "notes.txt")

	_, err := execute(t, env, path, "--no-save")
	if !errors.Is(err, cli.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "mp4") {
		t.Errorf("error should list supported formats, got %v", err)
	}
}

func TestAnalyzeCmd_MissingSpeechKey(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(&mockRunner{})
	env.Getenv = func(key string) string {
		if key == config.EnvGroqAPIKey {
			return "groq-key"
		}
		return ""
	}
	path := videoFile(t, "video.mp4")

	_, err := execute(t, env, path, "--no-save")
	if !errors.Is(err, config.ErrNoSpeechKey) {
		t.Errorf("expected ErrNoSpeechKey, got %v", err)
	}
}

func TestAnalyzeCmd_NoAIProvider(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(&mockRunner{})
	env.Getenv = func(key string) string {
		if key == config.EnvSpeechAPIKey {
			return "speech-key"
		}
		return ""
	}
	path := videoFile(t, "video.mp4")

	_, err := execute(t, env, path, "--no-save")
	if err == nil || !strings.Contains(err.Error(), "no AI provider") {
		t.Errorf("expected no-provider error, got %v", err)
	}
}

func TestClampParallel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{5, 5},
		{10, 10},
		{50, 10},
	}

	for _, tt := range tests {
		if got := cli.ClampParallel(tt.in); got != tt.want {
			t.Errorf("ClampParallel(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

func TestAnalyzeCmd_SingleFile(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	env, factory, _ := testEnv(runner)
	path := videoFile(t, "palestra.mp4")

	out, err := execute(t, env, path, "--no-save")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if runner.PathCount() != 1 {
		t.Errorf("runner called %d times, want 1", runner.PathCount())
	}
	if !strings.Contains(out, "Título de palestra.mp4") {
		t.Errorf("output missing title, got %q", out)
	}
	if len(factory.stores) != 1 || factory.stores[0] != nil {
		t.Errorf("expected nil store with --no-save")
	}
}

func TestAnalyzeCmd_SaveCreatesStore(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	env, factory, _ := testEnv(runner)
	path := videoFile(t, "palestra.mp4")
	outDir := filepath.Join(t.TempDir(), "out")

	if _, err := execute(t, env, path, "-d", outDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(factory.stores) != 1 || factory.stores[0] == nil {
		t.Fatalf("expected a store to be wired")
	}
	if _, err := os.Stat(outDir); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
}

func TestAnalyzeCmd_VersionWarningPrinted(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	factory := &mockFactory{runner: runner}
	stderr := &bytes.Buffer{}
	env := cli.NewEnv(
		cli.WithStderr(stderr),
		cli.WithGetenv(defaultTestEnv),
		cli.WithFFmpegResolver(&mockResolver{path: "/usr/bin/ffmpeg", warning: "ffmpeg version 3 is older than the supported minimum"}),
		cli.WithPipelineFactory(factory),
	)
	path := videoFile(t, "video.mp4")

	if _, err := execute(t, env, path, "--no-save"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), "older than the supported minimum") {
		t.Errorf("version warning not printed, stderr = %q", stderr.String())
	}
}

func TestAnalyzeCmd_ResolverFailure(t *testing.T) {
	t.Parallel()

	resolveErr := errors.New("ffmpeg not found")
	env := cli.NewEnv(
		cli.WithStderr(&bytes.Buffer{}),
		cli.WithGetenv(defaultTestEnv),
		cli.WithFFmpegResolver(&mockResolver{err: resolveErr}),
		cli.WithPipelineFactory(&mockFactory{runner: &mockRunner{}}),
	)
	path := videoFile(t, "video.mp4")

	_, err := execute(t, env, path, "--no-save")
	if !errors.Is(err, resolveErr) {
		t.Errorf("expected resolver error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Batch
// ---------------------------------------------------------------------------

func TestAnalyzeCmd_BatchProcessesAllFiles(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	env, _, _ := testEnv(runner)

	paths := []string{
		videoFile(t, "ep1.mp4"),
		videoFile(t, "ep2.mp4"),
		videoFile(t, "ep3.mp4"),
	}

	args := append(append([]string{}, paths...), "--no-save", "-p", "2")
	if _, err := execute(t, env, args...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if runner.PathCount() != 3 {
		t.Errorf("runner called %d times, want 3", runner.PathCount())
	}
}

func TestAnalyzeCmd_BatchContinuesPastFailures(t *testing.T) {
	t.Parallel()

	bad := videoFile(t, "bad.mp4")
	good1 := videoFile(t, "good1.mp4")
	good2 := videoFile(t, "good2.mp4")

	cause := errors.New("transcription exploded")
	runner := &mockRunner{failPaths: map[string]error{bad: cause}}
	env, _, stderr := testEnv(runner)

	_, err := execute(t, env, good1, bad, good2, "--no-save")
	if !errors.Is(err, cli.ErrBatchFailed) {
		t.Fatalf("expected ErrBatchFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("batch error should wrap the cause, got %v", err)
	}

	if runner.PathCount() != 3 {
		t.Errorf("runner called %d times, want all 3 despite failure", runner.PathCount())
	}
	if !strings.Contains(stderr.String(), "bad.mp4") {
		t.Errorf("per-file failure not logged, stderr = %q", stderr.String())
	}
}
