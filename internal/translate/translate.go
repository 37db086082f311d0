// Package translate turns extracted sign text into the requested target
// language.
//
// Two providers are available:
//
//   - google: the keyless web endpoint used by the Google Translate widget
//   - openai: a single chat completion with a translation instruction
//
// Both take their deadline from the context passed to Translate.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ironsheep/signboard-mcp/internal/config"
)

// ErrEmptyText is returned when there is nothing to translate.
var ErrEmptyText = errors.New("no text to translate")

// Translator translates text into a target language code.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// New builds the translator selected by cfg.Provider. client is used by the
// google provider and may be nil to use http.DefaultClient.
func New(cfg config.TranslationConfig, client *http.Client) (Translator, error) {
	switch cfg.Provider {
	case "google":
		return NewGoogle(cfg.Google.BaseURL, client), nil
	case "openai":
		return NewOpenAI(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown translation provider: %q", cfg.Provider)
	}
}
