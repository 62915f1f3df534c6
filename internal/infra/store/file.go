package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nmhoang23/rotauth/internal/core/domain"
)

// FileStore persists stats as a single JSON snapshot. Writes go to a temp
// file in the same directory and are renamed over the canonical path, so a
// crash or concurrent reader never observes a partial file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot. A missing file is an empty mapping, not an error.
func (f *FileStore) Load(_ context.Context) (map[string]domain.ResourceStats, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]domain.ResourceStats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stats file: %w", err)
	}

	stats := make(map[string]domain.ResourceStats)
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("parse stats file: %w", err)
	}
	return stats, nil
}

// Save overwrites the snapshot atomically.
func (f *FileStore) Save(_ context.Context, stats map[string]domain.ResourceStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp stats file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp stats file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp stats file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace stats file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
