package imaging

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Luma reduces img to ITU-R BT.601 luma (0.299*R + 0.587*G + 0.114*B).
//
// Region detection thresholds against this plane, so the weights must stay
// fixed regardless of which filter library the preprocessor uses.
func Luma(img image.Image) *image.Gray {
	g := imaging.Grayscale(img)
	out := image.NewGray(g.Bounds())
	for i := range out.Pix {
		out.Pix[i] = g.Pix[i*4]
	}
	return out
}

// Grayscale reduces img to single-channel BT.601 luma through bild, with the
// same weights as Luma. The returned image has 0-origin bounds.
func Grayscale(img image.Image) *image.Gray {
	return toGray(effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114))
}

// toGray copies an image whose channels are already equal into a 0-origin
// Gray. Equal RGB channels convert exactly through color.GrayModel.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// PrepareForOCR conditions an image (typically the detected sign region) for
// text extraction.
//
// The image is converted to grayscale and then passed through a median filter
// of side kernelSize. A median suppresses JPEG speckle and salt-and-pepper
// noise while keeping stroke edges sharper than a mean filter would.
//
// Parameters:
//   - img: Source image, colour or gray.
//   - kernelSize: Median window side length. Must be odd and >= 1; 1 disables
//     the filter. The usual value is 3.
//
// Returns a new single-channel image; img is not modified.
func PrepareForOCR(img image.Image, kernelSize int) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if kernelSize < 1 || kernelSize%2 == 0 {
		return nil, fmt.Errorf("median kernel size must be a positive odd number, got %d", kernelSize)
	}

	gray := Grayscale(img)
	if kernelSize == 1 {
		return gray, nil
	}

	// bild's kernel side is 2*radius+1
	radius := float64(kernelSize-1) / 2
	return toGray(effect.Median(gray, radius)), nil
}
