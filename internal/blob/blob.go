// Package blob stores uploaded files on local disk, keyed by opaque names.
package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is a disk-backed blob store rooted at a single directory.
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns the store.
func NewStore(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("blob root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the backing directory.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Put writes data under a fresh key, preserving the original extension, and
// returns the key used as the document's file_url.
func (s *Store) Put(originalName string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("blob store not initialised")
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	key := uuid.NewString() + ext
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return key, nil
}

// Fetch reads the blob stored under key.
func (s *Store) Fetch(key string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("blob store not initialised")
	}
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Delete removes the blob stored under key. Missing blobs are not an error;
// the row is the source of truth and the blob may already be gone.
func (s *Store) Delete(key string) error {
	if s == nil {
		return errors.New("blob store not initialised")
	}
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (s *Store) resolve(key string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(key))
	if cleaned == "" || cleaned == "." || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid blob key: %s", key)
	}
	path := filepath.Join(s.root, cleaned)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid blob key: %s", key)
	}
	return path, nil
}
