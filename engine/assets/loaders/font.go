package loaders

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/spaghettifunk/unify/engine/core"
)

type FontType int

const (
	FONT_TYPE_BITMAP FontType = iota
	FONT_TYPE_SYSTEM
)

// Font is either an AngelCode bitmap font or an OpenType collection.
type Font struct {
	Type    FontType
	Locator string

	Bitmap     *bmfont.BitmapFont
	Collection *opentype.Collection
}

// Face returns a face of the first font in the collection at the given size.
// Bitmap fonts have no scalable face.
func (f *Font) Face(size, dpi float64) (font.Face, error) {
	if f.Collection == nil || f.Collection.NumFonts() == 0 {
		return nil, fmt.Errorf("font %s has no scalable face", f.Locator)
	}
	sf, err := f.Collection.Font(0)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(sf, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

// LineHeight is the bitmap line height in pixels, 0 for system fonts.
func (f *Font) LineHeight() int {
	if f.Bitmap == nil {
		return 0
	}
	return int(f.Bitmap.Descriptor.Common.LineHeight)
}

type FontLoader struct{}

func (fl *FontLoader) Load(ctx context.Context, locator string) (interface{}, error) {
	ext := strings.ToLower(path.Ext(locator))
	switch ext {
	case ".fnt":
		if isRemote(locator) {
			return nil, fmt.Errorf("%w: bitmap fonts load from disk only: %s", core.ErrUnsupportedFormat, locator)
		}
		// the page images are resolved relative to the descriptor
		bf, err := bmfont.Load(localPath(locator))
		if err != nil {
			return nil, err
		}
		core.LogDebug("bitmap font %q: %d glyphs, %d pages", bf.Descriptor.Info.Face, len(bf.Descriptor.Chars), len(bf.Descriptor.Pages))
		return &Font{Type: FONT_TYPE_BITMAP, Locator: locator, Bitmap: bf}, nil

	case ".ttf", ".otf", ".ttc", ".otc":
		r, err := open(ctx, locator)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		c, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		return &Font{Type: FONT_TYPE_SYSTEM, Locator: locator, Collection: c}, nil
	}
	return nil, fmt.Errorf("%w: font %s", core.ErrUnsupportedFormat, locator)
}

func (fl *FontLoader) Unload(asset interface{}) error {
	if f, ok := asset.(*Font); ok {
		f.Bitmap = nil
		f.Collection = nil
	}
	return nil
}
