package assets

import (
	"fmt"
	"path"
	"strings"

	"github.com/spaghettifunk/unify/engine/core"
)

// Kind is the category an asset is stored under in the Table.
type Kind string

const (
	KindTexture Kind = "textures"
	KindFont    Kind = "fonts"
	KindAudio   Kind = "audioBuffers"
	KindModel   Kind = "models"
)

// Kinds lists every known kind in a stable order.
var Kinds = []Kind{KindTexture, KindFont, KindAudio, KindModel}

func (k Kind) Valid() bool {
	switch k {
	case KindTexture, KindFont, KindAudio, KindModel:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts the table names ("textures") and their singular forms ("texture").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "textures", "texture":
		return KindTexture, nil
	case "fonts", "font":
		return KindFont, nil
	case "audiobuffers", "audiobuffer", "audio":
		return KindAudio, nil
	case "models", "model":
		return KindModel, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownAssetKind, s)
}

// KindForExtension guesses the kind of a locator from its file extension.
func KindForExtension(locator string) (Kind, error) {
	ext := strings.ToLower(path.Ext(stripQuery(locator)))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return KindTexture, nil
	case ".fnt", ".ttf", ".otf", ".ttc", ".otc":
		return KindFont, nil
	case ".wav":
		return KindAudio, nil
	case ".obj", ".gltf", ".glb":
		return KindModel, nil
	}
	return "", fmt.Errorf("%w: no kind for extension %q", core.ErrUnknownAssetKind, ext)
}

func stripQuery(locator string) string {
	if i := strings.IndexAny(locator, "?#"); i >= 0 {
		return locator[:i]
	}
	return locator
}
