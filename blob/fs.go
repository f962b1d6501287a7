package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/conveyal/r5-sub005/types"
)

// FS stores blobs as files under a root directory. Keys may contain "/"
// separators, which become subdirectories. Writes go through a temp file and
// rename so readers never observe a partial artifact.
type FS struct {
	root string
}

// Compile-time assertion that FS implements BlobStore.
var _ types.BlobStore = (*FS)(nil)

// NewFS creates a filesystem blob store rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root %q: %w", dir, err)
	}

	return &FS{root: dir}, nil
}

// Put writes data to the file named by key.
func (s *FS) Put(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %q: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %q: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("writing %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("closing %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("publishing %q: %w", key, err)
	}

	return nil
}

// Get reads the file named by key.
func (s *FS) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrBlobNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}

	return data, nil
}

// path resolves a key under the root, rejecting traversal outside it.
func (s *FS) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}

	return filepath.Join(s.root, clean), nil
}
