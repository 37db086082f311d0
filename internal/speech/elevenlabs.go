package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ironsheep/signboard-mcp/internal/config"
	"github.com/ironsheep/signboard-mcp/internal/httpx"
)

// ElevenLabsSynthesizer calls the ElevenLabs text-to-speech API.
//
// The multilingual models infer the language from the text; lang is not
// sent.
type ElevenLabsSynthesizer struct {
	apiKey  string
	baseURL string
	voiceID string
	modelID string
	client  *http.Client
}

// NewElevenLabs returns an ElevenLabsSynthesizer. cfg.APIKey and cfg.VoiceID
// are required.
func NewElevenLabs(cfg config.ElevenLabsConfig, client *http.Client) (*ElevenLabsSynthesizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("elevenlabs speech requires an API key")
	}
	if cfg.VoiceID == "" {
		return nil, errors.New("elevenlabs speech requires a voice id")
	}
	if client == nil {
		client = http.DefaultClient
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "eleven_multilingual_v2"
	}

	return &ElevenLabsSynthesizer{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		voiceID: cfg.VoiceID,
		modelID: modelID,
		client:  client,
	}, nil
}

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings map[string]float64 `json:"voice_settings"`
}

// Synthesize implements Synthesizer.
func (e *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_44100_128",
		e.baseURL, url.PathEscape(e.voiceID))

	body, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: map[string]float64{
			"stability":        0.75,
			"similarity_boost": 0.7,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httpx.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("elevenlabs returned no audio")
	}
	return data, nil
}
