// Package blob implements the blob store port on the local filesystem.
// Objects live under a root directory keyed by their store key; URLs are the
// configured public base plus the key.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/velmora/wallet_ledger_app/internal/core/ports/providers"
)

type FilesystemStore struct {
	rootDir string
	baseURL string
}

// NewFilesystemStore creates a blob store rooted at rootDir.
func NewFilesystemStore(rootDir, baseURL string) (*FilesystemStore, error) {
	if err := os.MkdirAll(rootDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", rootDir, err)
	}
	return &FilesystemStore{
		rootDir: rootDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Ensure FilesystemStore implements providers.BlobStore
var _ providers.BlobStore = (*FilesystemStore)(nil)

// path resolves key inside the root, rejecting traversal outside it.
func (s *FilesystemStore) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.Join(s.rootDir, filepath.FromSlash(key)))
	if !strings.HasPrefix(cleaned, filepath.Clean(s.rootDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return cleaned, nil
}

// Put stores the stream under key and returns its public URL.
func (s *FilesystemStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	target, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("failed to create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return "", fmt.Errorf("failed to create blob temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close blob %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to publish blob %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// GetStream opens the stored object for reading.
func (s *FilesystemStore) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the stored object.
func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}
