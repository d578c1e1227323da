package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lockfit/internal/domain"
)

const itemSuffix = ".enc"

// FileSecureStore keeps each item as a sealed blob in its own file.
type FileSecureStore struct {
	dir  string
	seal sealer
	mu   sync.Mutex
}

// NewFileSecureStore returns a FileSecureStore rooted at dir. Items are
// sealed under passphrase.
func NewFileSecureStore(dir, passphrase string, opts ...Option) *FileSecureStore {
	return &FileSecureStore{dir: dir, seal: newSealer(passphrase, opts...)}
}

// Get returns the opened item and whether it was present.
func (s *FileSecureStore) Get(key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(path)
	if err != nil {
		return nil, false, err
	}
	if b == nil {
		return nil, false, nil
	}
	pt, err := s.seal.open(key, b)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", key, err)
	}
	return pt, true, nil
}

// Set seals value and atomically replaces the item.
func (s *FileSecureStore) Set(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.seal.seal(key, value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return writeFile(path, b, 0o600)
}

// Delete removes the item; a missing item is not an error.
func (s *FileSecureStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileSecureStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid item key %q", key)
	}
	return filepath.Join(s.dir, key+itemSuffix), nil
}

// Compile-time assertion that FileSecureStore implements domain.SecureStore.
var _ domain.SecureStore = (*FileSecureStore)(nil)
