package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/signboard-mcp/internal/config"
	"github.com/ironsheep/signboard-mcp/internal/imaging"
)

// Options configures the Tesseract client.
type Options struct {
	// Languages is a "+"-separated list of Tesseract language codes, e.g.
	// "eng" or "eng+fra". The traineddata for each must be installed.
	Languages string

	// TessdataPrefix overrides where Tesseract looks for traineddata. Empty
	// uses the library default (or TESSDATA_PREFIX).
	TessdataPrefix string

	// PageSegMode is Tesseract's --psm value. 3 is fully automatic layout.
	PageSegMode int
}

// FromConfig maps the OCR config section to Options.
func FromConfig(c config.OCRConfig) Options {
	return Options{
		Languages:      c.Languages,
		TessdataPrefix: c.TessdataPrefix,
		PageSegMode:    c.PageSegMode,
	}
}

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this word in the recognized image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the complete results of text extraction from an image.
type OCRResult struct {
	// FullText is all recognized text with Tesseract's spacing and newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words. May be empty if bounding box
	// extraction fails (text will still be in FullText).
	Regions []TextRegion `json:"regions"`
}

// Extractor runs Tesseract over prepared sign images.
//
// Each call creates its own gosseract client, so an Extractor is safe for
// concurrent use.
type Extractor struct {
	opts Options
}

// New returns an Extractor with opts. Languages defaults to "eng".
func New(opts Options) *Extractor {
	if opts.Languages == "" {
		opts.Languages = "eng"
	}
	return &Extractor{opts: opts}
}

// ExtractText returns the raw text Tesseract finds in img.
//
// gosseract cannot be interrupted, so recognition runs in its own goroutine
// and ExtractText returns ctx.Err() as soon as ctx is done. The abandoned
// recognition finishes in the background and its result is discarded.
func (e *Extractor) ExtractText(ctx context.Context, img *image.Gray) (string, error) {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return "", err
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		text, err := e.recognizeText(data)
		done <- outcome{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case o := <-done:
		return o.text, o.err
	}
}

// recognizeText is Recognize without the word-level pass.
func (e *Extractor) recognizeText(data []byte) (string, error) {
	client, err := e.clientFor(data)
	if err != nil {
		return "", err
	}
	defer client.Close()

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Recognize performs OCR on encoded image bytes (PNG, JPEG, TIFF, BMP).
//
// # Word-Level Results
//
// Regions uses Tesseract's RIL_WORD iterator level. Empty words are filtered
// out. If word-level bounding box extraction fails, the full text is still
// returned with an empty Regions slice.
func (e *Extractor) Recognize(data []byte) (*OCRResult, error) {
	client, err := e.clientFor(data)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{
			FullText: text,
			Regions:  []TextRegion{},
		}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &OCRResult{
		FullText: text,
		Regions:  regions,
	}, nil
}

// clientFor returns a configured client with data loaded. The caller closes
// it.
func (e *Extractor) clientFor(data []byte) (*gosseract.Client, error) {
	client, err := e.newClient()
	if err != nil {
		return nil, err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return client, nil
}

func (e *Extractor) newClient() (*gosseract.Client, error) {
	client := gosseract.NewClient()

	if e.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(strings.Split(e.opts.Languages, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetPageSegMode(gosseract.PageSegMode(e.opts.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return client, nil
}

// OCRInfo contains information about the OCR subsystem.
type OCRInfo struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Error          string `json:"error,omitempty"`
	Backend        string `json:"backend"`
	Languages      string `json:"languages"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}

// Info reports whether Tesseract can be initialized with the configured
// languages.
func (e *Extractor) Info() OCRInfo {
	info := OCRInfo{
		Backend:        "gosseract",
		Languages:      e.opts.Languages,
		TessdataPrefix: e.opts.TessdataPrefix,
	}

	client, err := e.newClient()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	defer client.Close()

	info.Version = client.Version()
	info.Available = info.Version != ""
	if !info.Available {
		info.Error = "tesseract reported no version"
	}
	return info
}
