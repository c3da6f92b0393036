package captures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage persists capture bytes on disk, addressed by filename. The
// relational store keeps only metadata.
type Storage struct {
	dir string
}

func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create captures dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) Save(filename string, data []byte) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write capture file: %w", err)
	}
	return nil
}

func (s *Storage) Remove(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove capture file: %w", err)
	}
	return nil
}

func (s *Storage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read captures dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// ListOlderThan returns files last modified at least age ago. Freshly
// written files are invisible to callers that reconcile against the
// database, since the matching row may not be committed yet.
func (s *Storage) ListOlderThan(age time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read captures dir: %w", err)
	}

	cutoff := time.Now().Add(-age)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *Storage) path(filename string) (string, error) {
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid capture filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
