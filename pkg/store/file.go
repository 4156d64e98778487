package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/graph"
)

// FileStore is a file-based layout store for CLI use.
// Layouts are stored as JSON layout documents, one file per id.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to $XDG_DATA_HOME/gmplayout/layouts/
// (~/.local/share/gmplayout/layouts/).
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns the default FileStore directory.
func DefaultDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "gmplayout", "layouts"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "gmplayout", "layouts"), nil
}

func (s *FileStore) layoutPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(_ context.Context, l *facility.Layout) error {
	if err := ValidateID(l.ID); err != nil {
		return err
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.layoutPath(l.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	if err := os.Rename(tmp, s.layoutPath(l.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write layout file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*facility.Layout, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.layoutPath(id), id)
}

func (s *FileStore) read(path, id string) (*facility.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", id, err)
	}
	return l, nil
}

// all loads every readable layout. Unparseable files are skipped.
func (s *FileStore) all() ([]*facility.Layout, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}
	var out []*facility.Layout
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		l, err := s.read(filepath.Join(s.baseDir, entry.Name()), id)
		if err != nil {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *FileStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	layouts, err := s.all()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, Summarize(l))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.layoutPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

func (s *FileStore) Match(_ context.Context, p Pattern) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	layouts, err := s.all()
	if err != nil {
		return nil, err
	}
	var out []Match
	for _, l := range layouts {
		out = append(out, MatchLayout(l, p)...)
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for layout files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
