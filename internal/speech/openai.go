package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ironsheep/signboard-mcp/internal/config"
)

// OpenAISynthesizer speaks through OpenAI's audio/speech endpoint.
//
// The models detect the language from the text, so the lang argument is not
// sent.
type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

// NewOpenAI returns an OpenAISynthesizer. cfg.APIKey is required.
func NewOpenAI(cfg config.OpenAIConfig) (*OpenAISynthesizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai speech requires an API key")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	model := openai.SpeechModel(cfg.Model)
	if model == "" {
		model = openai.TTSModel1
	}
	voice := openai.SpeechVoice(cfg.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}

	return &OpenAISynthesizer{
		client: openai.NewClientWithConfig(oc),
		model:  model,
		voice:  voice,
	}, nil
}

// Synthesize implements Synthesizer.
func (o *OpenAISynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech failed: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("openai speech returned no audio")
	}
	return data, nil
}
