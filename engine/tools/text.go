package tools

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/spaghettifunk/unify/engine/core"
)

type Justify string

const (
	JustifyLeft   Justify = "left"
	JustifyCenter Justify = "center"
	JustifyRight  Justify = "right"
)

// maxLengthCuts bounds how many lines may be produced by length wrapping.
const maxLengthCuts = 100

type WrapOptions struct {
	// Size is the height of one line in world units. Default 1.
	Size        float32
	LineSpacing float32
	// LineLength is the maximum number of characters per line. Default 10.
	LineLength int
	Justify    Justify
	// LineBreakChars end a line right after themselves.
	LineBreakChars []rune
	// Face measures line widths. Default basicfont.Face7x13.
	Face font.Face
}

// Line is one wrapped line positioned relative to the text origin.
type Line struct {
	Text  string
	X     float32
	Y     float32
	Width float32
}

type wrapper struct {
	opts  WrapOptions
	lines []Line
	y     float32
}

// WrapText splits text into lines of at most LineLength characters. A line
// ends at a newline, right after one of LineBreakChars, or at the last space
// that keeps it within LineLength.
func WrapText(text string, opts WrapOptions) []Line {
	if opts.Size == 0 {
		opts.Size = 1
	}
	if opts.LineLength <= 0 {
		opts.LineLength = 10
	}
	if opts.Face == nil {
		opts.Face = basicfont.Face7x13
	}
	if text == "" {
		return nil
	}

	w := &wrapper{opts: opts}
	limit := opts.LineLength
	rest := []rune(text)
	cuts := 0
	for len(rest) > 0 {
		if cut := newlineCut(rest, limit); cut > 0 {
			w.emit(rest[:cut])
			rest = rest[cut:]
			continue
		}
		if cut := breakCharCut(rest, limit, opts.LineBreakChars); cut > 0 {
			w.emit(rest[:cut])
			rest = rest[cut:]
			continue
		}
		if len(rest) > limit && cuts < maxLengthCuts {
			cut := spaceCut(rest, limit)
			w.emit(rest[:cut])
			rest = rest[cut:]
			cuts++
			continue
		}
		w.emit(rest)
		break
	}
	return w.lines
}

// newlineCut returns the index of the first newline past the start of text
// if it falls within limit.
func newlineCut(text []rune, limit int) int {
	for i := 1; i < len(text) && i <= limit; i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return -1
}

// breakCharCut returns the index just after the earliest break character past
// the start of text if it falls within limit.
func breakCharCut(text []rune, limit int, chars []rune) int {
	cut := limit + 1
	for _, c := range chars {
		for i := 1; i < len(text); i++ {
			if text[i] == c {
				cut = min(cut, i+1)
				break
			}
		}
	}
	if cut > limit {
		return -1
	}
	return cut
}

// spaceCut returns where to cut text so the line ends before a space. Text
// without any usable space is cut hard at limit.
func spaceCut(text []rune, limit int) int {
	if text[limit] == ' ' {
		return limit
	}
	for i := limit - 1; i > 0; i-- {
		if text[i] == ' ' {
			return i
		}
	}
	core.LogError("can't resolve line length %d: %s", limit, string(text))
	return limit
}

func (w *wrapper) emit(text []rune) {
	line := Line{Text: strings.TrimSpace(string(text)), Y: w.y}
	line.Width = w.measure(line.Text)

	switch w.opts.Justify {
	case JustifyCenter:
		line.X = -line.Width / 2
	case JustifyRight:
		line.X = -line.Width
	}

	w.lines = append(w.lines, line)
	w.y -= w.opts.Size * (w.opts.LineSpacing + 1)
}

// measure returns the width of text in world units.
func (w *wrapper) measure(text string) float32 {
	height := w.opts.Face.Metrics().Height
	if height <= 0 {
		return 0
	}
	adv := font.MeasureString(w.opts.Face, text)
	return float32(adv) / float32(height) * w.opts.Size
}
