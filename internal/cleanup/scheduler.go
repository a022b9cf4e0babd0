// Package cleanup sweeps abandoned files out of the temp directory.
// Normal pipeline runs delete their own artifacts; the sweeper only
// catches what crashed or stalled runs left behind.
package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Scheduler periodically deletes temp files past a maximum age.
type Scheduler struct {
	tempDir  string
	interval time.Duration
	maxAge   time.Duration
	stop     chan struct{}
}

// NewScheduler creates a sweeper over tempDir.
func NewScheduler(tempDir string, interval, maxAge time.Duration) *Scheduler {
	return &Scheduler{tempDir: tempDir, interval: interval, maxAge: maxAge, stop: make(chan struct{})}
}

// Start sweeps once immediately, then on every tick until Stop.
func (s *Scheduler) Start() {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()

	log.Printf("cleanup scheduler started (interval %s, max age %s)", s.interval, s.maxAge)
}

// Stop halts the periodic sweeps.
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) sweep() {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		log.Printf("cleanup: cannot read %s: %v", s.tempDir, err)
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.tempDir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("cleanup: failed to delete %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("cleanup: removed %d stale temp files", removed)
	}
}

// EnsureDir creates the temp directory if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
