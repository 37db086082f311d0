package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ironsheep/signboard-mcp/internal/config"
)

const translatePrompt = "You translate text photographed on signboards. " +
	"Translate the user's message into %s. " +
	"Reply with the translation only, without quotes, notes or transliteration. " +
	"Keep line breaks."

// OpenAITranslator translates with a chat completion model.
type OpenAITranslator struct {
	client *openai.Client
	model  string
}

// NewOpenAI returns an OpenAITranslator. cfg.APIKey is required; cfg.BaseURL
// overrides the API root (e.g. for a compatible gateway).
func NewOpenAI(cfg config.OpenAIConfig) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai translation requires an API key")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAITranslator{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}, nil
}

// Translate implements Translator.
func (o *OpenAITranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(translatePrompt, promptName(target))},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai translation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai translation returned no choices")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("openai translation returned empty text")
	}
	return out, nil
}
