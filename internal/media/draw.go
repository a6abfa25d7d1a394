package media

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// fillVerticalGradient paints the image with a top-to-bottom gradient
// interpolated across the given color stops.
func fillVerticalGradient(img *image.RGBA, stops []color.RGBA) {
	bounds := img.Bounds()
	height := bounds.Dy()

	for y := 0; y < height; y++ {
		pos := float64(y) / float64(height) * float64(len(stops)-1)
		idx := int(pos)
		next := idx + 1
		if next >= len(stops) {
			next = len(stops) - 1
		}
		ratio := pos - float64(idx)

		c := color.RGBA{
			R: lerp(stops[idx].R, stops[next].R, ratio),
			G: lerp(stops[idx].G, stops[next].G, ratio),
			B: lerp(stops[idx].B, stops[next].B, ratio),
			A: 255,
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, bounds.Min.Y+y, c)
		}
	}
}

func lerp(a, b uint8, ratio float64) uint8 {
	return uint8(float64(a)*(1-ratio) + float64(b)*ratio)
}

// fillCircle draws a filled circle centered at (cx, cy).
func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	fillEllipse(img, cx, cy, r, r, c)
}

// fillEllipse draws a filled axis-aligned ellipse centered at (cx, cy)
// with half-axes rx and ry.
func fillEllipse(img *image.RGBA, cx, cy, rx, ry int, c color.RGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	bounds := img.Bounds()
	for dy := -ry; dy <= ry; dy++ {
		y := cy + dy
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		span := float64(rx) * math.Sqrt(1-float64(dy)*float64(dy)/float64(ry*ry))
		for dx := -int(span); dx <= int(span); dx++ {
			x := cx + dx
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			img.SetRGBA(x, y, c)
		}
	}
}

var textFace = basicfont.Face7x13

// drawText renders a line of text at the given baseline position.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: textFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// textWidth measures the rendered width of a string in pixels.
func textWidth(text string) int {
	return font.MeasureString(textFace, text).Ceil()
}

// wrapText splits text into lines no wider than maxWidth pixels,
// breaking on word boundaries.
func wrapText(text string, maxWidth int) []string {
	var lines []string
	var current string

	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if textWidth(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
