package tools

import (
	"errors"
	"image"
	"image/color"
	m "math"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/unify/engine/core"
)

// ResizeImage scales img to a square of res by res pixels.
func ResizeImage(img image.Image, res int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, res, res))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	core.LogWarn("Texture has been resized from (%dx%d) to (%dx%d).", b.Dx(), b.Dy(), res, res)
	return dst
}

// ToGrayscale replaces every pixel with the average of its RGB channels.
// Alpha is kept.
func ToGrayscale(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := dst.RGBAAt(x, y)
			avg := uint8(m.RoundToEven((float64(c.R) + float64(c.G) + float64(c.B)) / 3))
			dst.SetRGBA(x, y, color.RGBA{R: avg, G: avg, B: avg, A: c.A})
		}
	}
	return dst
}

// StitchImages tiles base with a grid by grid pattern of tiles, left to right
// and top to bottom, cycling through tiles. Tiles that are not
// width(base)/grid pixels square are resized first.
func StitchImages(base draw.Image, tiles []image.Image, grid int) (draw.Image, error) {
	if grid <= 0 {
		return nil, errors.New("stitch grid size must be positive")
	}
	if len(tiles) == 0 {
		return nil, errors.New("no tiles to stitch")
	}

	tileRes := base.Bounds().Dx() / grid
	if tileRes == 0 {
		return nil, errors.New("base image is smaller than the grid")
	}

	prepared := make([]image.Image, len(tiles))
	for i, t := range tiles {
		if t.Bounds().Dx() != tileRes || t.Bounds().Dy() != tileRes {
			t = ResizeImage(t, tileRes)
		}
		prepared[i] = t
	}

	origin := base.Bounds().Min
	for i := 0; i < grid*grid; i++ {
		t := prepared[i%len(prepared)]
		at := image.Pt(origin.X+(i%grid)*tileRes, origin.Y+(i/grid)*tileRes)
		r := image.Rectangle{Min: at, Max: at.Add(image.Pt(tileRes, tileRes))}
		draw.Draw(base, r, t, t.Bounds().Min, draw.Src)
	}
	return base, nil
}
