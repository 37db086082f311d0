package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ironsheep/signboard-mcp/internal/httpx"
)

// GoogleTranslator calls translate.googleapis.com's gtx client endpoint.
//
// No API key is needed. The source language is always auto-detected by
// Google; the language reported by the pipeline's own detector is not sent.
type GoogleTranslator struct {
	baseURL string
	client  *http.Client
}

// NewGoogle returns a GoogleTranslator rooted at baseURL
// (normally "https://translate.googleapis.com").
func NewGoogle(baseURL string, client *http.Client) *GoogleTranslator {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleTranslator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Translate implements Translator.
func (g *GoogleTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", GoogleCode(target))
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_a/single?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", httpx.UserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httpx.CheckResponse(resp); err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}

	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode translation: %w", err)
	}
	return parseSegments(payload)
}

// parseSegments joins the translated sentence segments of a gtx response.
//
// The response is a positional array whose first element is a list of
// segments, each [translated, original, ...].
func parseSegments(payload []json.RawMessage) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("unexpected translation response: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		// transliteration rows have a null first element and decode to ""
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("translation response contained no text")
	}
	return sb.String(), nil
}
