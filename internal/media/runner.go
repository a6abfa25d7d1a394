// Package media wraps the external generation capabilities (image,
// speech, avatar, encode) behind a uniform contract: attempt the
// collaborator, degrade to a deterministic local substitute on any
// failure, never propagate a stage error past the adapter boundary.
// Only the encode finalize step may fail the pipeline.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Runner invokes the external media-encoding tool (ffmpeg/ffprobe).
type Runner struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger
}

// NewRunner creates a Runner for the given executable names or paths.
func NewRunner(ffmpegPath, ffprobePath string, logger *slog.Logger) *Runner {
	return &Runner{ffmpeg: ffmpegPath, ffprobe: ffprobePath, logger: logger}
}

// Available reports whether the encoding tool can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.ffmpeg)
	return err == nil
}

// Run executes ffmpeg with the given arguments, capturing stderr for
// diagnostics.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug("running ffmpeg", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// ProbeDuration returns the duration of a media file via ffprobe.
func (r *Runner) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, r.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
