package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the opening history in a single JSON file. A process-wide
// mutex plus write-to-temp-and-rename makes the read-modify-write atomic,
// so concurrent runs sharing one store cannot interleave appends.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// historyFile is the on-disk shape: {"openings": ["...", ...]}.
type historyFile struct {
	Openings []string `json:"openings"`
}

// NewFileStore creates a store backed by the given path. The file is
// created on first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Recent returns up to n of the most recent openings, oldest first.
func (s *FileStore) Recent(_ context.Context, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	openings, err := s.load()
	if err != nil {
		return nil, err
	}
	if n < len(openings) {
		openings = openings[len(openings)-n:]
	}
	return openings, nil
}

// Append records one opening, clipped to OpeningLength, evicting the oldest
// entries beyond MaxOpenings.
func (s *FileStore) Append(_ context.Context, opening string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	openings, err := s.load()
	if err != nil {
		return err
	}

	openings = append(openings, Clip(opening))
	if len(openings) > MaxOpenings {
		openings = openings[len(openings)-MaxOpenings:]
	}

	data, err := json.MarshalIndent(historyFile{Openings: openings}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal opening history: %w", err)
	}

	// Write via temp file + rename so a crash never leaves a torn file.
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".openings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write opening history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace opening history: %w", err)
	}
	return nil
}

// load reads the history file. A missing or corrupt file is treated as an
// empty history rather than an error.
func (s *FileStore) load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read opening history: %w", err)
	}

	var h historyFile
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, nil
	}
	return h.Openings, nil
}
