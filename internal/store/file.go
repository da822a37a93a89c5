package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps documents as plain files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

// Path returns the file path used for name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save writes data verbatim.
func (s *FileStore) Save(_ context.Context, name string, data []byte) error {
	if s.dir != "." {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	if err := os.WriteFile(s.Path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path(name), err)
	}
	return nil
}

// Load reads a document written by Save.
func (s *FileStore) Load(_ context.Context, name string) ([]byte, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
