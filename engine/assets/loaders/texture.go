package loaders

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/unify/engine/core"
)

// Texture is a decoded image ready to be uploaded by a renderer.
type Texture struct {
	Locator string
	Format  string
	Image   image.Image
}

func (t *Texture) Width() int {
	return t.Image.Bounds().Dx()
}

func (t *Texture) Height() int {
	return t.Image.Bounds().Dy()
}

type TextureLoader struct{}

func (tl *TextureLoader) Load(ctx context.Context, locator string) (interface{}, error) {
	r, err := open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", core.ErrUnsupportedFormat, locator, err)
	}
	return &Texture{
		Locator: locator,
		Format:  format,
		Image:   img,
	}, nil
}

func (tl *TextureLoader) Unload(asset interface{}) error {
	if t, ok := asset.(*Texture); ok {
		t.Image = nil
	}
	return nil
}
