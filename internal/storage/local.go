// Package storage exposes the flat transcript directory. There is no
// index or database behind it; the directory listing is the catalog
// and retrieval is by filename only.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrBadName rejects transcript names that would escape the store.
var ErrBadName = errors.New("invalid transcript name")

// TranscriptStore reads the directory the transcription invoker
// writes into.
type TranscriptStore struct {
	dir string
}

// NewTranscriptStore creates the output directory if absent and
// returns a store over it.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	return &TranscriptStore{dir: dir}, nil
}

// Dir returns the store's directory path.
func (s *TranscriptStore) Dir() string { return s.dir }

// List returns the transcript filenames sorted by name.
func (s *TranscriptStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Read returns one transcript's content by filename. Names carrying
// path separators or dot-dot segments are rejected.
func (s *TranscriptStore) Read(name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return nil, ErrBadName
	}
	if !strings.HasSuffix(name, ".txt") {
		return nil, ErrBadName
	}
	return os.ReadFile(filepath.Join(s.dir, name))
}
