package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalFileStore keeps files on disk under dir, published at publicPrefix
type LocalFileStore struct {
	dir          string
	publicPrefix string
}

// NewLocalFileStore creates the upload directory if needed
func NewLocalFileStore(dir, publicPrefix string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalFileStore{dir: dir, publicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

// Dir returns the directory files are written to
func (s *LocalFileStore) Dir() string {
	return s.dir
}

// Save writes the file to disk
func (s *LocalFileStore) Save(_ context.Context, key string, data io.ReadSeeker, _ string) (string, error) {
	name := filepath.Base(key)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path.Join(s.publicPrefix, name), nil
}

// Delete removes a previously saved file. URLs outside publicPrefix are rejected.
func (s *LocalFileStore) Delete(_ context.Context, url string) error {
	if !strings.Contains(url, s.publicPrefix+"/") {
		return ErrForeignURL
	}

	err := os.Remove(filepath.Join(s.dir, baseName(url)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
