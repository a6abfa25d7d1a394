package media

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"os"

	"github.com/mkuznetsov/videogen/internal/artifacts"
	"github.com/mkuznetsov/videogen/internal/domain"
	"github.com/mkuznetsov/videogen/internal/metrics"
)

const (
	frameWidth  = 1080
	frameHeight = 1920
)

// ImageSynthesizer is the external text-to-image collaborator.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, prompt string, destPath string) error
}

// ImageAdapter produces one fixed-resolution still per scene. The
// external synthesizer is attempted first when configured; the local
// placeholder render is the fallback and always succeeds short of an
// I/O failure.
type ImageAdapter struct {
	synth  ImageSynthesizer
	logger *slog.Logger
}

// NewImageAdapter creates an ImageAdapter. synth may be nil when no
// external capability is configured.
func NewImageAdapter(synth ImageSynthesizer, logger *slog.Logger) *ImageAdapter {
	return &ImageAdapter{synth: synth, logger: logger}
}

// Attempt renders the scene to a JPEG inside the task's temp scope and
// returns its path.
func (a *ImageAdapter) Attempt(ctx context.Context, scope *artifacts.Scope, scene domain.Scene) (string, error) {
	destPath := scope.Path(fmt.Sprintf("scene_%d.jpg", scene.Index))

	if a.synth != nil {
		err := a.synth.Synthesize(ctx, scene.Prompt, destPath)
		if err == nil {
			return destPath, nil
		}
		a.logger.Warn("image synthesis failed, using placeholder", "scene", scene.Index, "error", err)
		metrics.StageFallbacks.WithLabelValues("image").Inc()
	}

	if err := renderPlaceholder(destPath, scene.Prompt, scene.Index); err != nil {
		return "", fmt.Errorf("render placeholder image: %w", err)
	}
	return destPath, nil
}

// gradientStops is the vertical background palette, dark to light blue.
var gradientStops = []color.RGBA{
	{R: 20, G: 40, B: 100, A: 255},
	{R: 40, G: 60, B: 150, A: 255},
	{R: 60, G: 80, B: 200, A: 255},
	{R: 80, G: 100, B: 220, A: 255},
}

const (
	textLineHeight = 20
	textMargin     = 100
)

func renderPlaceholder(destPath, prompt string, sceneIndex int) error {
	img := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	fillVerticalGradient(img, gradientStops)

	text := truncateRunes(prompt, 100)
	if text != prompt {
		text += "..."
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}

	lines := wrapText(text, frameWidth-textMargin)
	y := frameHeight/2 - len(lines)*textLineHeight/2
	for _, line := range lines {
		x := (frameWidth - textWidth(line)) / 2
		drawText(img, x+2, y+2, line, black)
		drawText(img, x, y, line, white)
		y += textLineHeight
	}

	drawText(img, 50, 50, fmt.Sprintf("Scene %d", sceneIndex+1), white)

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
