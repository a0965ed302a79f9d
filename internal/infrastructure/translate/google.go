package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"AffairsRelay/internal/ports"
)

// MaxChars is the largest input accepted by the public web endpoint.
const MaxChars = 5000

// GoogleTranslator calls the keyless translate_a/single endpoint used by the web widget.
type GoogleTranslator struct {
	endpoint string
	client   *http.Client
}

var _ ports.Translator = (*GoogleTranslator)(nil)

// NewGoogleTranslator builds a translator; a nil client gets a 10s timeout.
func NewGoogleTranslator(endpoint string, client *http.Client) *GoogleTranslator {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleTranslator{endpoint: endpoint, client: client}
}

// Translate returns text translated from source to target. Blank input and
// identical languages are returned unchanged without a request.
func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if n := utf8.RuneCountInString(text); n >= MaxChars {
		return "", fmt.Errorf("text of %d chars exceeds translator limit %d", n, MaxChars)
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(source, target) {
		return text, nil
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("translate error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var body []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode translation: %w", err)
	}

	return joinSegments(body)
}

// joinSegments concatenates the first field of every segment in body[0].
func joinSegments(body []json.RawMessage) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var segments [][]any
	if err := json.Unmarshal(body[0], &segments); err != nil {
		return "", fmt.Errorf("decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("translation response has no text")
	}
	return b.String(), nil
}
