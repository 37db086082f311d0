// Package langdetect identifies the language of extracted sign text.
package langdetect

import (
	"context"
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// ErrUndetermined is returned when the text carries no usable signal, e.g.
// it is empty, only digits and punctuation, or too short to classify.
var ErrUndetermined = errors.New("language could not be determined")

// Detector wraps the whatlanggo trigram classifier.
//
// whatlanggo is pure Go and needs no network or model files, so a Detector
// is always available and safe for concurrent use.
type Detector struct {
	// MinConfidence rejects classifications below this score (0.0 to 1.0).
	// Zero accepts any result whatlanggo is willing to give.
	MinConfidence float64
}

// New returns a Detector that accepts any classification.
func New() *Detector {
	return &Detector{}
}

// DetectLanguage returns the ISO 639-1 code of text's language.
//
// Languages without a two-letter code are reported by their ISO 639-3 code.
func (d *Detector) DetectLanguage(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetermined
	}

	info := whatlanggo.Detect(text)
	if info.Script == nil || info.Confidence < d.MinConfidence {
		return "", ErrUndetermined
	}

	if code := info.Lang.Iso6391(); code != "" {
		return code, nil
	}
	if code := info.Lang.Iso6393(); code != "" {
		return code, nil
	}
	return "", ErrUndetermined
}
