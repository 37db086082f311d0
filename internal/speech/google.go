package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ironsheep/signboard-mcp/internal/httpx"
	"github.com/ironsheep/signboard-mcp/internal/translate"
)

// maxChunk is the longest text translate_tts accepts per request, in runes.
const maxChunk = 100

// GoogleSynthesizer calls translate.google.com/translate_tts.
type GoogleSynthesizer struct {
	baseURL string
	client  *http.Client
}

// NewGoogle returns a GoogleSynthesizer rooted at baseURL
// (normally "https://translate.google.com").
func NewGoogle(baseURL string, client *http.Client) *GoogleSynthesizer {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleSynthesizer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Synthesize implements Synthesizer.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := splitText(text, maxChunk)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}

	var audio []byte
	for i, chunk := range chunks {
		part, err := g.fetch(ctx, chunk, lang, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("speech chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio = append(audio, part...)
	}
	return audio, nil
}

func (g *GoogleSynthesizer) fetch(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", translate.GoogleCode(lang))
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", httpx.UserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httpx.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("tts returned no audio")
	}
	return data, nil
}

// splitText breaks text into pieces of at most max runes, preferring to cut
// at whitespace. Words longer than max are hard-split. Whitespace-only input
// yields no chunks.
func splitText(text string, max int) []string {
	words := strings.FieldsFunc(text, unicode.IsSpace)
	chunks := make([]string, 0)

	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}

	for _, w := range words {
		r := []rune(w)
		for len(r) > max {
			flush()
			chunks = append(chunks, string(r[:max]))
			r = r[max:]
		}

		switch {
		case len(cur) == 0:
			cur = append(cur, r...)
		case len(cur)+1+len(r) <= max:
			cur = append(cur, ' ')
			cur = append(cur, r...)
		default:
			flush()
			cur = append(cur, r...)
		}
	}
	flush()

	return chunks
}
