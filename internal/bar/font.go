package bar

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// LoadFace opens a TrueType/OpenType font file at the given point size.
// An empty path selects the built-in face. On failure the built-in face is
// returned together with the error so callers can log and carry on.
func LoadFace(path string, size float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return basicfont.Face7x13, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return basicfont.Face7x13, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13, fmt.Errorf("failed to create face for %s: %w", path, err)
	}
	return face, nil
}
