// Package storage provides the file storage backend for user avatars and
// task submissions. Paths handed to a FileStorage are always relative,
// forward-slash keys; the backend decides where the bytes actually live.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for keys that would escape the storage root.
var ErrInvalidPath = errors.New("storage: invalid path")

// FileStorage defines the contract for a file storage backend.
type FileStorage interface {
	Save(ctx context.Context, path string, reader io.Reader) (int64, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// DiskStorage stores files under a single root directory on local disk.
type DiskStorage struct {
	root string
}

// NewDiskStorage creates a DiskStorage rooted at dir, creating it if needed.
func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStorage{root: dir}, nil
}

// resolve maps a storage key onto the root directory, rejecting keys that
// would traverse out of it.
func (s *DiskStorage) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, clean), nil
}

// Save writes the content of the reader to the given path, creating parent
// directories as needed. It returns the number of bytes written.
func (s *DiskStorage) Save(ctx context.Context, path string, reader io.Reader) (int64, error) {
	target, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(target)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(f, reader)
}

// Get opens the file at the given path for reading.
func (s *DiskStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(target)
}

// Delete removes the file at the given path. Deleting a missing file is not
// an error; the caller only cares that it is gone.
func (s *DiskStorage) Delete(ctx context.Context, path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
