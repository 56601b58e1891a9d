package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrRecordExists indicates a record for the same video already exists in
// the output directory.
var ErrRecordExists = errors.New("analysis record already exists")

// Compile-time interface compliance check.
var _ Store = (*FileStore)(nil)

// FileStore persists each analysis as one JSON document in a directory.
// Existing records are never overwritten.
type FileStore struct {
	dir string
}

// NewFileStore creates a store writing into dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes rec as <filename>.json. Returns ErrRecordExists if a record
// with the same name is already present.
func (s *FileStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, rec.Filename+".json")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrRecordExists, path)
		}
		return fmt.Errorf("create record file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		f.Close()
		_ = os.Remove(path) // Cleanup on failure
		return fmt.Errorf("encode record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close record file: %w", err)
	}
	return nil
}

// Path returns where a record for the given name would be written.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
