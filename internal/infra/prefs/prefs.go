// Package prefs stores small local settings in a JSON file. The
// remote store stays the source of truth for financial records;
// only device-level preferences such as the budget limit live here.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type fileContent struct {
	MonthlyLimit *float64 `json:"monthly_limit,omitempty"`
}

// FileStore reads and writes preferences under a single path,
// serialized by a mutex. Writes go through a temp file and rename
// so a crash never leaves a torn file behind.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the parent directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating preferences dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// LoadBudgetLimit returns nil when no limit was ever saved.
func (s *FileStore) LoadBudgetLimit() (*float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return nil, err
	}
	return content.MonthlyLimit, nil
}

// SaveBudgetLimit overwrites the stored limit.
func (s *FileStore) SaveBudgetLimit(limit float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return err
	}
	content.MonthlyLimit = &limit
	return s.write(content)
}

func (s *FileStore) read() (fileContent, error) {
	var content fileContent
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return content, nil
	}
	if err != nil {
		return content, fmt.Errorf("reading preferences: %w", err)
	}
	if err := json.Unmarshal(data, &content); err != nil {
		return content, fmt.Errorf("decoding preferences: %w", err)
	}
	return content, nil
}

func (s *FileStore) write(content fileContent) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing preferences: %w", err)
	}
	return nil
}
