package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"AffairsRelay/internal/config"
	"AffairsRelay/internal/ports"
)

// ChatGPTTranslator implements ports.Translator backed by OpenAI-compatible APIs.
type ChatGPTTranslator struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Translator = (*ChatGPTTranslator)(nil)

// NewChatGPTTranslator builds a client from configuration.
func NewChatGPTTranslator(cfg config.ChatGPTConfig, timeout time.Duration) *ChatGPTTranslator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ChatGPTTranslator{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Translate asks the model for a plain translation of text.
func (c *ChatGPTTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt translator is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt translator misconfigured")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"temperature": 0,
		"messages": []chatMessage{
			{Role: "system", Content: safePrompt(c.systemPrompt)},
			{Role: "user", Content: fmt.Sprintf("Translate from %s to %s:\n\n%s", source, target, text)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chatgpt returned no choices")
	}

	out := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("chatgpt returned empty translation")
	}
	return out, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a translator. Reply with the translated text only."
	}
	return prompt
}
