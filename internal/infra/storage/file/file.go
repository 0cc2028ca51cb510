// Package file provides a filesystem-backed durable store for the cache.
// It needs no external infrastructure, which makes it the default backend.
package file

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// Store persists cache blobs as files under a directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a Store over it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".taxocache")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Load implements cache.Store.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save implements cache.Store. The blob is written to a temporary file and
// renamed into place so readers never observe a partial write.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	path := s.path(key)
	tmp := fmt.Sprintf("%s.tmp.%d", path, rand.Int())

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Clear implements cache.Store.
func (s *Store) Clear(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, sanitize(key)+".json")
}

// sanitize makes a cache key safe for use as a filename.
func sanitize(key string) string {
	unsafe := []string{"/", "\\", ":", "?", "&", "=", "#", "<", ">", "|", "*", "\"", " "}
	for _, ch := range unsafe {
		key = strings.ReplaceAll(key, ch, "_")
	}
	return key
}
