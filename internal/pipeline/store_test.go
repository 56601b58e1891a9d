package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/titulyzer/titulyzer/internal/pipeline"
)

func testRecord() pipeline.Record {
	return pipeline.Record{
		Filename:      "palestra",
		OriginalName:  "palestra.mp4",
		Title:         "Um Título",
		Description:   "Uma descrição",
		Summary:       "Um resumo adequado",
		Tags:          []string{"a", "b"},
		AIModel:       "groq",
		Transcription: "a transcrição completa",
		Duration:      90,
		FileSize:      2048,
		CreatedAt:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestFileStore_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := pipeline.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := testRecord()
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(store.Path("palestra"))
	if err != nil {
		t.Fatalf("failed to read record file: %v", err)
	}

	var got pipeline.Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("record file is not valid JSON: %v", err)
	}

	if got.Title != rec.Title || got.AIModel != rec.AIModel || got.Transcription != rec.Transcription {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestFileStore_DuplicateRecord(t *testing.T) {
	t.Parallel()

	store, err := pipeline.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := testRecord()
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Save(context.Background(), rec); !errors.Is(err, pipeline.ErrRecordExists) {
		t.Errorf("expected ErrRecordExists, got %v", err)
	}
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir() + "/nested/analyses"
	if _, err := pipeline.NewFileStore(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("output directory not created: %v", err)
	}
}

func TestFileStore_CancelledContext(t *testing.T) {
	t.Parallel()

	store, err := pipeline.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Save(ctx, testRecord()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
