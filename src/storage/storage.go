package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Storage abstracts where uploaded documents live so the core never touches
// the filesystem directly.
type Storage interface {
	Store(r io.Reader, originalName string) (string, error)
	Delete(fileRef string) error
	Exists(fileRef string) bool
}

// LocalStorage keeps uploads in a flat directory on the kiosk disk.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Store writes the upload stream to disk under a fresh name and returns the
// file reference. The original extension is kept so the page counter can
// dispatch on it.
func (s *LocalStorage) Store(r io.Reader, originalName string) (string, error) {
	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path, nil
}

// Delete removes the backing file. Callers treat failures as best-effort
// cleanup; the expiry sweep retries orphans.
func (s *LocalStorage) Delete(fileRef string) error {
	if err := os.Remove(fileRef); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to delete upload file", "file", fileRef, "error", err)
		return err
	}
	return nil
}

// Exists reports whether the backing file is still on disk.
func (s *LocalStorage) Exists(fileRef string) bool {
	_, err := os.Stat(fileRef)
	return err == nil
}
