package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quickpaste/quickpaste/internal/slug"
)

// FilesystemStore keeps one file per paste id under a dedicated
// subdirectory of the data directory.
type FilesystemStore struct {
	dir string
}

// NewFilesystemStore creates the content directory if needed and returns
// a store rooted there.
func NewFilesystemStore(dataDir string) (*FilesystemStore, error) {
	dir := filepath.Join(dataDir, "pastes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return &FilesystemStore{dir: dir}, nil
}

// path maps an id to its content file. Ids are validated before use so a
// crafted id cannot escape the content directory.
func (f *FilesystemStore) path(id string) (string, error) {
	if !slug.IsValid(id) {
		return "", fmt.Errorf("invalid paste id: %q", id)
	}
	return filepath.Join(f.dir, id), nil
}

// Write stores content under id.
func (f *FilesystemStore) Write(id string, content []byte) error {
	p, err := f.path(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, content, 0o644); err != nil {
		return fmt.Errorf("failed to write content for %s: %w", id, err)
	}
	return nil
}

// Read returns the blob for id, or ErrNotExist.
func (f *FilesystemStore) Read(id string) ([]byte, error) {
	p, err := f.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content for %s: %w", id, err)
	}
	return data, nil
}

// Delete removes the blob for id; a missing file is not an error.
func (f *FilesystemStore) Delete(id string) error {
	p, err := f.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete content for %s: %w", id, err)
	}
	return nil
}

// Stat reports existence and size of the blob for id.
func (f *FilesystemStore) Stat(id string) (bool, int64, error) {
	p, err := f.path(id)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, info.Size(), nil
}

// Close is a no-op for the filesystem backend.
func (f *FilesystemStore) Close() error {
	return nil
}
