package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps the snapshot as an indented JSON document.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes to a temporary file next to the target and renames it over.
func (s *FileStore) Save(snap *Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}

	file, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(file.Name())

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		file.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	if err := os.Rename(file.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot %q: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Load() (*Snapshot, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return nil, ErrNotFound
	}

	var snap Snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", s.path, err)
	}
	return &snap, nil
}

func (s *FileStore) Close() error { return nil }
