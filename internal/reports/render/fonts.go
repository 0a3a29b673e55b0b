package render

import (
	_ "embed"
	"strings"
	"sync"

	"golang.org/x/image/font/sfnt"
)

const fontFamily = "DejaVuSansCondensed"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularTTF []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldTTF []byte
)

var (
	glyphsOnce sync.Once
	glyphs     *sfnt.Font
	glyphsErr  error
)

func glyphFont() (*sfnt.Font, error) {
	glyphsOnce.Do(func() {
		glyphs, glyphsErr = sfnt.Parse(regularTTF)
	})
	return glyphs, glyphsErr
}

// Drawable reports whether the native PDF font has a glyph for every rune of s.
func Drawable(s string) bool {
	f, err := glyphFont()
	if err != nil {
		return false
	}
	var buf sfnt.Buffer
	for _, r := range s {
		if !hasGlyph(f, &buf, r) {
			return false
		}
	}
	return true
}

// drawableText swaps runes the font cannot draw for U+FFFD so a gap is visible instead of a silent substitute.
func drawableText(s string) string {
	f, err := glyphFont()
	if err != nil {
		return s
	}
	var buf sfnt.Buffer
	return strings.Map(func(r rune) rune {
		if hasGlyph(f, &buf, r) {
			return r
		}
		return '\uFFFD'
	}, s)
}

func hasGlyph(f *sfnt.Font, buf *sfnt.Buffer, r rune) bool {
	idx, err := f.GlyphIndex(buf, r)
	return err == nil && idx != 0
}
