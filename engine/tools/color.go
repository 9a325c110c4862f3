package tools

import (
	"image"
	m "math"

	"github.com/spaghettifunk/unify/engine/math"
)

// ColorSampleFromImage samples img on an xRes by yRes grid and returns the
// RGB values in 0-1, three floats per sample. Without resolutions the image
// size is used; with only xRes the grid is square with floor(sqrt(xRes))
// samples per side.
func ColorSampleFromImage(img image.Image, xRes, yRes int) []float32 {
	b := img.Bounds()
	if xRes <= 0 && yRes <= 0 {
		xRes, yRes = b.Dx(), b.Dy()
	}
	if xRes > 0 && yRes <= 0 {
		xRes = int(m.Floor(m.Sqrt(float64(xRes))))
		yRes = xRes
	}

	count := xRes * yRes
	out := make([]float32, count*3)
	for i := 0; i < count; i++ {
		nx, ny := IndexToNormalizedXY(i, xRes, yRes)
		px, py := ImageXYFromNormalXY(b, nx, ny)
		r, g, bl, _ := img.At(b.Min.X+px, b.Min.Y+py).RGBA()
		out[i*3] = float32(r>>8) / 255
		out[i*3+1] = float32(g>>8) / 255
		out[i*3+2] = float32(bl>>8) / 255
	}
	return out
}

// IndexToNormalizedXY maps a linear sample index onto 0-1 coordinates.
// Samples run column by column.
func IndexToNormalizedXY(i, xCount, yCount int) (float32, float32) {
	x := float32(i/xCount) / float32(yCount)
	y := float32(i%yCount) / float32(yCount)
	return x, y
}

// ImageXYFromNormalXY returns the pixel of bounds closest to the normalized
// position, relative to bounds.Min. Positions are clamped to 0-1.
func ImageXYFromNormalXY(bounds image.Rectangle, x, y float32) (int, int) {
	x = math.Clamp(x, 0, 1)
	y = math.Clamp(y, 0, 1)
	width := float64(bounds.Dx() - 1)
	height := float64(bounds.Dy() - 1)
	return int(m.Floor(width*float64(x) + 0.5)), int(m.Floor(height*float64(y) + 0.5))
}
