package artifacts

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	errpkg "github.com/mkuznetsov/videogen/internal/errors"
)

// OutputStore is the durable home of finished videos. Files are kept
// for the retention window and swept lazily on access and at startup.
type OutputStore struct {
	dir       string
	retention time.Duration
}

// NewOutputStore creates the output directory if needed.
func NewOutputStore(dir string, retention time.Duration) (*OutputStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &OutputStore{dir: dir, retention: retention}, nil
}

// PathFor returns the durable location of an artifact.
func (s *OutputStore) PathFor(artifactID string) string {
	return filepath.Join(s.dir, artifactID+".mp4")
}

// Promote copies a finished temp artifact into the durable location.
// This is the final pipeline step; its failure is the only encode error
// that surfaces to the task state.
func (s *OutputStore) Promote(srcPath, artifactID string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open final artifact: %w", err)
	}
	defer src.Close()

	dstPath := s.PathFor(artifactID)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("copy final artifact: %w", err)
	}
	return dstPath, nil
}

// Resolve returns the path of a stored artifact, sweeping expired files
// opportunistically first. Missing artifacts report ErrArtifactNotFound.
func (s *OutputStore) Resolve(artifactID string) (string, error) {
	s.Sweep(time.Now())

	path := s.PathFor(artifactID)
	if _, err := os.Stat(path); err != nil {
		return "", errpkg.ErrArtifactNotFound
	}
	return path, nil
}

// Sweep deletes output files older than the retention window. Files
// younger than the cutoff are never touched.
func (s *OutputStore) Sweep(now time.Time) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("output sweep failed", "dir", s.dir, "error", err)
		return
	}

	cutoff := now.Add(-s.retention)

	var g errgroup.Group
	g.SetLimit(4)
	var removed atomic.Int64

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		entry := entry
		g.Go(func() error {
			info, err := entry.Info()
			if err != nil {
				return nil
			}
			if info.ModTime().Before(cutoff) {
				path := filepath.Join(s.dir, entry.Name())
				if err := os.Remove(path); err != nil {
					slog.Warn("failed to remove expired artifact", "path", path, "error", err)
				} else {
					removed.Add(1)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := removed.Load(); n > 0 {
		slog.Info("swept expired output artifacts", "removed", n)
	}
}
