package layout

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type faceKind int

const (
	faceRegular faceKind = iota
	faceBold
	faceMono
)

// parsedFonts holds the parsed Go fonts. sfnt fonts are safe to share; the
// faces built from them are not, so every Engine keeps its own face cache.
var parsedFonts = sync.OnceValues(func() (map[faceKind]*opentype.Font, error) {
	sources := map[faceKind][]byte{
		faceRegular: goregular.TTF,
		faceBold:    gobold.TTF,
		faceMono:    gomono.TTF,
	}
	out := make(map[faceKind]*opentype.Font, len(sources))
	for kind, src := range sources {
		f, err := opentype.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse font %d: %w", kind, err)
		}
		out[kind] = f
	}
	return out, nil
})

type faceKey struct {
	kind faceKind
	size float64
}

// faceCache measures text at 72 DPI so that one font unit is one pixel.
type faceCache struct {
	mu    sync.Mutex
	fonts map[faceKind]*opentype.Font
	faces map[faceKey]font.Face
}

func newFaceCache() (*faceCache, error) {
	fonts, err := parsedFonts()
	if err != nil {
		return nil, err
	}
	return &faceCache{fonts: fonts, faces: make(map[faceKey]font.Face)}, nil
}

func (c *faceCache) face(kind faceKind, size float64) (font.Face, error) {
	key := faceKey{kind, size}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.fonts[kind], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	c.faces[key] = f
	return f, nil
}

// measure returns the advance width of s in pixels. A face that cannot be
// built falls back to a fixed-pitch estimate.
func (c *faceCache) measure(kind faceKind, size float64, s string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := c.face(kind, size)
	if err != nil {
		return float64(len([]rune(s))) * size * 0.6
	}
	return toFloat(font.MeasureString(f, s))
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
