// Package mirror persists the last-known-good snapshot of all orders in a
// single file, the on-device fallback used whenever the remote data service
// is unreachable or not configured.
package mirror

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"logitrack-server/internal/models"

	"github.com/spf13/afero"
)

// Store is the single shared snapshot slot. Every write fully replaces the
// content; there is no field-level patching.
type Store interface {
	Load() ([]models.Order, error)
	Save(orders []models.Order) error
}

// FileStore keeps the snapshot as a JSON array in one well-known file.
type FileStore struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed mirror. fs may be afero.NewMemMapFs()
// in tests.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Load reads the last snapshot. A missing file means no snapshot yet and
// yields an empty list, not an error.
func (s *FileStore) Load() ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Order{}, nil
		}
		return nil, fmt.Errorf("mirror.Load: %w", err)
	}

	var orders []models.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("mirror.Load: corrupt snapshot: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Save replaces the snapshot atomically (temp file + rename) so a crash
// mid-write never leaves a truncated snapshot behind.
func (s *FileStore) Save(orders []models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if orders == nil {
		orders = []models.Order{}
	}
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("mirror.Save: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mirror.Save: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("mirror.Save: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("mirror.Save: %w", err)
	}
	return nil
}
