// Package overlay draws translated text back onto the source photograph.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/signboard-mcp/internal/config"
	"github.com/ironsheep/signboard-mcp/internal/imaging"
)

// Options controls how text is rendered.
type Options struct {
	// FontScale multiplies BaseFontSize to give the pixel size of the face.
	FontScale float64

	// BaseFontSize is the face size in pixels at scale 1.0.
	BaseFontSize float64

	// Color is a "#RRGGBB" hex string.
	Color string

	// BaselineOffset lifts the baseline this many pixels above the origin.
	BaselineOffset int

	// Thickness is how many adjacent horizontal passes are drawn.
	Thickness int
}

// FromConfig maps the overlay section of the pipeline config to Options.
func FromConfig(c config.OverlayConfig) Options {
	return Options{
		FontScale:      c.FontScale,
		BaseFontSize:   c.BaseFontSize,
		Color:          c.TextColor,
		BaselineOffset: c.BaselineOffset,
		Thickness:      c.Thickness,
	}
}

// Compositor renders a single line of text at a fixed anchor.
//
// A Compositor is safe for concurrent use; each Render builds its own face.
type Compositor struct {
	font           *opentype.Font
	size           float64
	color          color.NRGBA
	baselineOffset int
	thickness      int
}

// New parses the bundled Go Regular face and validates opts.
func New(opts Options) (*Compositor, error) {
	size := opts.FontScale * opts.BaseFontSize
	if size <= 0 {
		return nil, fmt.Errorf("font size must be > 0, got %.2f", size)
	}
	if opts.Thickness < 1 {
		return nil, errors.New("thickness must be >= 1")
	}

	c, err := imaging.ParseHexColor(opts.Color)
	if err != nil {
		return nil, err
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return &Compositor{
		font:           f,
		size:           size,
		color:          c,
		baselineOffset: opts.BaselineOffset,
		thickness:      opts.Thickness,
	}, nil
}

// Render returns a copy of original with text drawn on it.
//
// The text starts at origin.X with its baseline BaselineOffset pixels above
// origin.Y. It is neither wrapped nor fitted to any region: glyphs running
// past the right edge or above the top of the image are clipped. original is
// never modified, and the result has 0-origin bounds of the same size.
func (c *Compositor) Render(original image.Image, origin image.Point, text string) (*image.NRGBA, error) {
	dst, err := imaging.Normalize(original)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return dst, nil
	}

	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    c.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	// origin is in the source's coordinate space
	at := origin.Sub(original.Bounds().Min)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.color),
		Face: face,
	}
	for i := 0; i < c.thickness; i++ {
		d.Dot = fixed.P(at.X+i, at.Y-c.baselineOffset)
		d.DrawString(text)
	}

	return dst, nil
}
