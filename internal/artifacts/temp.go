// Package artifacts manages the two on-disk areas of the service: the
// per-task scratch scopes and the durable output store with its
// retention sweep.
package artifacts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// TempStore hands out per-task scratch scopes under a shared root.
type TempStore struct {
	root string
}

// NewTempStore creates the scratch root if needed.
func NewTempStore(root string) (*TempStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create temp root: %w", err)
	}
	return &TempStore{root: root}, nil
}

// Scope creates a dedicated subdirectory for one task's intermediate
// files. Every artifact of the run lives inside it and is released as
// one unit.
func (s *TempStore) Scope(taskID string) (*Scope, error) {
	dir := filepath.Join(s.root, taskID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp scope: %w", err)
	}
	return &Scope{dir: dir}, nil
}

// Scope is the temp-artifact namespace of a single task run.
type Scope struct {
	dir string
}

// Path returns the absolute location for a named intermediate file.
func (s *Scope) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Dir returns the scope's directory.
func (s *Scope) Dir() string {
	return s.dir
}

// Release removes the entire scope recursively. Cleanup is
// unconditional: it runs whether the pipeline succeeded or failed.
func (s *Scope) Release() {
	if err := os.RemoveAll(s.dir); err != nil {
		slog.Warn("failed to release temp scope", "dir", s.dir, "error", err)
	}
}
