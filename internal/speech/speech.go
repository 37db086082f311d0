// Package speech synthesizes spoken audio for translated sign text.
//
// Every provider returns a complete MP3 payload. Providers:
//
//   - google: the keyless translate_tts endpoint, called once per chunk of at
//     most 100 characters and concatenated (MP3 frames are self-delimiting)
//   - openai: the audio/speech endpoint through go-openai
//   - elevenlabs: the ElevenLabs text-to-speech REST API
package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ironsheep/signboard-mcp/internal/config"
)

// Format is the container every provider returns.
const Format = "mp3"

// ErrEmptyText is returned when there is nothing to speak.
var ErrEmptyText = errors.New("no text to synthesize")

// Synthesizer produces MP3 audio of text spoken in lang.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// New builds the synthesizer selected by cfg.Provider. client is used by the
// HTTP providers and may be nil to use http.DefaultClient.
func New(cfg config.SpeechConfig, client *http.Client) (Synthesizer, error) {
	switch cfg.Provider {
	case "google":
		return NewGoogle(cfg.Google.BaseURL, client), nil
	case "openai":
		return NewOpenAI(cfg.OpenAI)
	case "elevenlabs":
		return NewElevenLabs(cfg.ElevenLabs, client)
	default:
		return nil, fmt.Errorf("unknown speech provider: %q", cfg.Provider)
	}
}
