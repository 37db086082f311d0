package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/signboard-mcp/internal/config"
	"github.com/ironsheep/signboard-mcp/internal/imaging"
)

// BoundingBox is an axis-aligned rectangle in the coordinate space of the
// image it was detected in.
type BoundingBox struct {
	X      int `json:"x"`      // Left edge (inclusive)
	Y      int `json:"y"`      // Top edge (inclusive)
	Width  int `json:"width"`  // Horizontal extent in pixels
	Height int `json:"height"` // Vertical extent in pixels
}

// Rect converts the box to an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Area returns Width × Height.
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// boxFromRect is the inverse of BoundingBox.Rect.
func boxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Strategy locates the single region of an image most likely to hold the
// sign's text.
//
// DetectRegion returns false when nothing qualifies; callers then fall back
// to the whole image. Implementations must be pure functions of the image.
type Strategy interface {
	DetectRegion(img image.Image) (BoundingBox, bool)
}

// Region is the result of Locate.
type Region struct {
	// Crop is a copy of the detected rectangle, or of the whole image when
	// Fallback is set.
	Crop *image.NRGBA

	// Origin is where translated text is anchored: the detected box's
	// top-left corner, or the fallback origin.
	Origin image.Point

	// Bounds is the detected box, or the full image bounds on fallback.
	Bounds BoundingBox

	// Fallback reports that the strategy found no region.
	Fallback bool
}

// Locate runs strategy over img and crops the winning region.
//
// When the strategy finds nothing the whole image is returned with the
// supplied fallback origin. The fallback origin is not clamped to the image;
// an origin outside a small image just produces clipped overlay text.
//
// # Errors
//
//   - Returns imaging.ErrEmptyImage for a nil or zero-sized image
//   - Returns error if the strategy reports a box outside the image
func Locate(img image.Image, strategy Strategy, fallback image.Point) (*Region, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, imaging.ErrEmptyImage
	}

	box, ok := strategy.DetectRegion(img)
	if !ok {
		full, err := imaging.Normalize(img)
		if err != nil {
			return nil, err
		}
		return &Region{
			Crop:     full,
			Origin:   fallback,
			Bounds:   boxFromRect(img.Bounds()),
			Fallback: true,
		}, nil
	}

	crop, err := imaging.Crop(img, box.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to crop detected region: %w", err)
	}

	return &Region{
		Crop:   crop,
		Origin: image.Pt(box.X, box.Y),
		Bounds: box,
	}, nil
}

// FromConfig builds the strategy named by c.Strategy.
func FromConfig(c config.RegionConfig) (Strategy, error) {
	switch c.Strategy {
	case "", "contour":
		if c.Threshold < 0 || c.Threshold > 255 {
			return nil, fmt.Errorf("threshold %d outside 0-255", c.Threshold)
		}
		return ContourStrategy{Threshold: uint8(c.Threshold), MinArea: c.MinArea}, nil
	case "edge-density":
		return EdgeDensityStrategy{MinConfidence: c.MinConfidence}, nil
	default:
		return nil, fmt.Errorf("unknown region strategy: %q", c.Strategy)
	}
}
