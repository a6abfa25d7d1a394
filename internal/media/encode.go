package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/mkuznetsov/videogen/internal/artifacts"
	"github.com/mkuznetsov/videogen/internal/metrics"
)

// EncodeAdapter composes the final video through four ordered
// sub-operations: slideshow build, audio mux, avatar overlay and
// finalize. Each encoding-tool invocation degrades to a simpler
// deterministic equivalent on failure; only finalize can fail the
// pipeline.
type EncodeAdapter struct {
	runner       *Runner
	output       *artifacts.OutputStore
	sceneSeconds int
	frameRate    int
	logger       *slog.Logger
}

// NewEncodeAdapter creates an EncodeAdapter writing finished videos
// into the given output store.
func NewEncodeAdapter(runner *Runner, output *artifacts.OutputStore, sceneSeconds, frameRate int, logger *slog.Logger) *EncodeAdapter {
	return &EncodeAdapter{
		runner:       runner,
		output:       output,
		sceneSeconds: sceneSeconds,
		frameRate:    frameRate,
		logger:       logger,
	}
}

// BuildSlideshow concatenates the scene images into one clip with a
// style-dependent pan/zoom animation and fade in/out. The fallback is a
// programmatic per-frame MJPEG slideshow.
func (a *EncodeAdapter) BuildSlideshow(ctx context.Context, scope *artifacts.Scope, imagePaths []string, styles []string) (string, error) {
	listPath := scope.Path("input.txt")
	var list strings.Builder
	for _, img := range imagePaths {
		fmt.Fprintf(&list, "file '%s'\n", img)
		fmt.Fprintf(&list, "duration %d\n", a.sceneSeconds)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}

	destPath := scope.Path("slideshow.mp4")
	err := a.runner.Run(ctx,
		"-y", "-f", "concat", "-safe", "0",
		"-i", listPath,
		"-vf", slideshowFilter(styles),
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprint(a.frameRate),
		destPath,
	)
	if err == nil {
		return destPath, nil
	}

	a.logger.Warn("slideshow encode failed, building MJPEG fallback", "error", err)
	metrics.StageFallbacks.WithLabelValues("slideshow").Inc()

	fallbackPath := scope.Path("slideshow.avi")
	if err := a.buildFallbackSlideshow(imagePaths, fallbackPath); err != nil {
		return "", err
	}
	return fallbackPath, nil
}

// slideshowFilter selects the pan/zoom animation for the requested
// styles and appends the fixed fades.
func slideshowFilter(styles []string) string {
	filter := "scale=1080:1920"

	switch {
	case containsStyle(styles, "cinematic"):
		filter += ",zoompan=z='zoom+0.002':d=90:s=1080x1920"
	case containsStyle(styles, "reels"):
		filter += ",crop=1080:1920,zoompan=z='zoom+0.003':d=90"
	default:
		filter += ",zoompan=z='zoom+0.0015':d=90:s=1080x1920"
	}

	return filter + ",fade=t=in:st=0:d=0.5,fade=t=out:st=2.5:d=0.5"
}

func containsStyle(styles []string, want string) bool {
	for _, s := range styles {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// buildFallbackSlideshow shows each image for the scene duration at the
// configured frame rate, scaled to the output resolution.
func (a *EncodeAdapter) buildFallbackSlideshow(imagePaths []string, destPath string) error {
	w, err := newAVIWriter(destPath, frameWidth, frameHeight, a.frameRate)
	if err != nil {
		return err
	}

	framesPerImage := a.sceneSeconds * a.frameRate
	for _, path := range imagePaths {
		frame, err := scaledJPEGFrame(path)
		if err != nil {
			w.Close()
			return err
		}
		for i := 0; i < framesPerImage; i++ {
			if err := w.AddFrame(frame); err != nil {
				w.Close()
				return err
			}
		}
	}
	return w.Close()
}

// scaledJPEGFrame loads an image and re-encodes it as a JPEG at the
// output resolution.
func scaledJPEGFrame(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode scene image: %w", err)
	}

	if src.Bounds().Dx() != frameWidth || src.Bounds().Dy() != frameHeight {
		dst := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode slideshow frame: %w", err)
	}
	return buf.Bytes(), nil
}

// MuxAudio adds the narration track, truncating to the shorter of the
// two inputs. The fallback keeps the silent slideshow unchanged.
func (a *EncodeAdapter) MuxAudio(ctx context.Context, scope *artifacts.Scope, videoPath, audioPath string) (string, error) {
	destPath := scope.Path("with_audio.mp4")
	err := a.runner.Run(ctx,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		destPath,
	)
	if err == nil {
		return destPath, nil
	}

	a.logger.Warn("audio mux failed, keeping silent video", "error", err)
	metrics.StageFallbacks.WithLabelValues("mux").Inc()

	if err := copyFile(videoPath, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// OverlayAvatar resizes the avatar clip and overlays it bottom-center.
// The fallback keeps the video without the overlay.
func (a *EncodeAdapter) OverlayAvatar(ctx context.Context, scope *artifacts.Scope, videoPath, avatarPath string) (string, error) {
	destPath := scope.Path("with_avatar.mp4")
	resizedPath := scope.Path("avatar_resized.mp4")

	err := a.runner.Run(ctx,
		"-y",
		"-i", avatarPath,
		"-vf", "scale=300:300",
		"-c:a", "copy",
		resizedPath,
	)
	if err == nil {
		err = a.runner.Run(ctx,
			"-y",
			"-i", videoPath,
			"-i", resizedPath,
			"-filter_complex", "[0][1]overlay=(W-w)/2:H-h-100",
			"-c:a", "copy",
			destPath,
		)
	}
	if err == nil {
		return destPath, nil
	}

	a.logger.Warn("avatar overlay failed, keeping video without overlay", "error", err)
	metrics.StageFallbacks.WithLabelValues("overlay").Inc()

	if err := copyFile(videoPath, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// Finalize promotes the composed clip into the durable output location.
// This is the only sub-operation whose failure surfaces to the task.
func (a *EncodeAdapter) Finalize(srcPath, artifactID string) (string, error) {
	return a.output.Promote(srcPath, artifactID)
}

func copyFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy to %s: %w", destPath, err)
	}
	return nil
}
