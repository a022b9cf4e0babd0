package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/transcodelab/transcribe-server/internal/storage"
)

func newStore(t *testing.T) *storage.TranscriptStore {
	t.Helper()
	store, err := storage.NewTranscriptStore(filepath.Join(t.TempDir(), "transcripts"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestNewTranscriptStoreCreatesDir(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	info, err := os.Stat(store.Dir())
	if err != nil || !info.IsDir() {
		t.Fatalf("store directory not created: %v", err)
	}
}

func TestListFiltersToTranscripts(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	for _, name := range []string{"b.wav.txt", "a.wav.txt", "note.md"} {
		if err := os.WriteFile(filepath.Join(store.Dir(), name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(store.Dir(), "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.wav.txt", "b.wav.txt"}
	if len(names) != len(want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestReadRejectsTraversal(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	bad := []string{"", "../secret.txt", "a/b.txt", "..", "plain.md"}
	for _, name := range bad {
		if _, err := store.Read(name); !errors.Is(err, storage.ErrBadName) {
			t.Errorf("Read(%q) err = %v, want ErrBadName", name, err)
		}
	}
}

func TestReadReturnsContent(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	if err := os.WriteFile(filepath.Join(store.Dir(), "clip.wav.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	content, err := store.Read("clip.wav.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "hello" {
		t.Errorf("content = %q, want %q", content, "hello")
	}
}
