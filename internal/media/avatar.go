package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/mkuznetsov/videogen/internal/artifacts"
	"github.com/mkuznetsov/videogen/internal/metrics"
)

const avatarSize = 400

// avatarColors maps avatar identifiers to face colors.
var avatarColors = map[string]color.RGBA{
	"male":   {R: 255, G: 200, B: 150, A: 255},
	"female": {R: 255, G: 200, B: 220, A: 255},
	"ai":     {R: 100, G: 200, B: 255, A: 255},
}

// AvatarAdapter procedurally generates a square talking-head clip sized
// to the narration duration. The mouth aperture animates as a periodic
// function of the frame index. Frames are assembled with the encoding
// tool when available, otherwise written as an MJPEG AVI.
type AvatarAdapter struct {
	runner    *Runner
	frameRate int
	logger    *slog.Logger
}

// NewAvatarAdapter creates an AvatarAdapter rendering at the given
// frame rate.
func NewAvatarAdapter(runner *Runner, frameRate int, logger *slog.Logger) *AvatarAdapter {
	return &AvatarAdapter{runner: runner, frameRate: frameRate, logger: logger}
}

// Attempt renders the avatar clip for the given audio artifact into the
// task's temp scope and returns its path. The clip length follows the
// probed narration duration, falling back to the WAV header when the
// probe tool is unavailable.
func (a *AvatarAdapter) Attempt(ctx context.Context, scope *artifacts.Scope, avatarType, audioPath string) (string, error) {
	duration, err := a.runner.ProbeDuration(ctx, audioPath)
	if err != nil || duration <= 0 {
		duration = AudioDuration(audioPath)
	}
	totalFrames := int(duration.Seconds() * float64(a.frameRate))
	if totalFrames < 1 {
		totalFrames = 1
	}

	framesDir := scope.Path("avatar_frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return "", fmt.Errorf("create avatar frames dir: %w", err)
	}

	for i := 0; i < totalFrames; i++ {
		data, err := a.renderFrame(avatarType, i)
		if err != nil {
			return "", err
		}
		framePath := filepath.Join(framesDir, fmt.Sprintf("frame_%04d.jpg", i))
		if err := os.WriteFile(framePath, data, 0o644); err != nil {
			return "", fmt.Errorf("write avatar frame: %w", err)
		}
	}

	clipPath := scope.Path(fmt.Sprintf("avatar_%s.mp4", avatarType))
	err = a.runner.Run(ctx,
		"-y",
		"-framerate", fmt.Sprint(a.frameRate),
		"-i", filepath.Join(framesDir, "frame_%04d.jpg"),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		clipPath,
	)
	if err == nil {
		return clipPath, nil
	}

	a.logger.Warn("avatar clip encode failed, writing MJPEG fallback", "error", err)
	metrics.StageFallbacks.WithLabelValues("avatar").Inc()

	aviPath := scope.Path(fmt.Sprintf("avatar_%s.avi", avatarType))
	if err := framesToAVI(framesDir, totalFrames, aviPath, avatarSize, avatarSize, a.frameRate); err != nil {
		return "", err
	}
	return aviPath, nil
}

// renderFrame draws one face frame: colored face circle, eyes, and a
// mouth ellipse whose aperture follows sin(frame*0.5) rescaled to [0,1].
func (a *AvatarAdapter) renderFrame(avatarType string, frame int) ([]byte, error) {
	faceColor, ok := avatarColors[avatarType]
	if !ok {
		faceColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}

	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	center := avatarSize / 2
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}

	fillCircle(img, center, center, 150, faceColor)

	fillCircle(img, center-50, center-30, 30, white)
	fillCircle(img, center+50, center-30, 30, white)
	fillCircle(img, center-50, center-30, 15, black)
	fillCircle(img, center+50, center-30, 15, black)

	mouthOpen := math.Sin(float64(frame)*0.5)*0.5 + 0.5
	mouthHeight := int(20 + mouthOpen*40)
	fillEllipse(img, center, center+50, 50, mouthHeight/2, black)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode avatar frame: %w", err)
	}
	return buf.Bytes(), nil
}

// framesToAVI assembles numbered JPEG frames into an MJPEG AVI clip.
func framesToAVI(framesDir string, totalFrames int, destPath string, width, height, fps int) error {
	w, err := newAVIWriter(destPath, width, height, fps)
	if err != nil {
		return err
	}

	for i := 0; i < totalFrames; i++ {
		data, err := os.ReadFile(filepath.Join(framesDir, fmt.Sprintf("frame_%04d.jpg", i)))
		if err != nil {
			w.Close()
			return fmt.Errorf("read frame %d: %w", i, err)
		}
		if err := w.AddFrame(data); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
