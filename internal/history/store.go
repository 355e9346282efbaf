// Package history remembers the navigation stack between runs.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"panelnav/internal/nav"
)

const (
	// DirEnv overrides the directory the history file lives in (for testing).
	DirEnv = "PANELNAV_STATE_DIR"
	// DefaultDir is the default state directory under the user's home.
	DefaultDir = ".panelnav"
	// FileName is the history file inside the state directory.
	FileName = "history.json"
)

// Snapshot is the persisted form of the stack: panel ids, bottom first.
type Snapshot struct {
	Panels  []string  `json:"panels"`
	SavedAt time.Time `json:"saved_at"`
}

// Store reads and writes the history file.
// Layout: ~/.panelnav/history.json
type Store struct {
	baseDir string
	mu      sync.Mutex // serializes writers sharing the temporary file
}

// NewStore creates a store rooted at the user's home + DefaultDir,
// or at the path in PANELNAV_STATE_DIR if set.
func NewStore() (*Store, error) {
	base := os.Getenv(DirEnv)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, DefaultDir)
	}
	return &Store{baseDir: base}, nil
}

// BaseDir returns the state directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Path returns the history file location.
func (s *Store) Path() string {
	return filepath.Join(s.baseDir, FileName)
}

// Load returns the saved panel ids. A missing file yields no panels and no error.
func (s *Store) Load() ([]string, error) {
	b, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", s.Path(), err)
	}
	return snap.Panels, nil
}

// Save replaces the history with entries. The file is written to a temporary
// name first so a crash never leaves a truncated history behind.
func (s *Store) Save(entries []nav.Descriptor) error {
	snap := Snapshot{Panels: make([]string, len(entries)), SavedAt: time.Now().UTC()}
	for i, d := range entries {
		snap.Panels[i] = d.Panel
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return os.Rename(tmp, s.Path())
}

// Controller saves the stack after every transition round.
type Controller struct {
	store *Store
}

// Ensure Controller implements nav.Controller.
var _ nav.Controller = (*Controller)(nil)

// NewController creates a controller persisting to store.
func NewController(store *Store) *Controller {
	return &Controller{store: store}
}

// Name implements nav.Named.
func (c *Controller) Name() string { return "history" }

// Transition implements nav.Controller.
func (c *Controller) Transition(_ context.Context, view nav.Reader) error {
	return c.store.Save(view.Entries())
}
