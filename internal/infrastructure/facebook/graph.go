package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"AffairsRelay/internal/config"
)

var (
	// ErrMissingPageToken is returned by PostToPage before any request is made.
	ErrMissingPageToken = errors.New("facebook page access token is missing")
	// ErrPageNotManaged means the user token cannot manage the configured page.
	ErrPageNotManaged = errors.New("facebook page not found among managed accounts")
)

// PageManager talks to the Graph API on behalf of one page.
type PageManager struct {
	baseURL   string
	appID     string
	appSecret string
	userToken string
	pageID    string
	client    *http.Client
}

// NewPageManager builds a Graph client from configuration.
func NewPageManager(cfg config.FacebookConfig) *PageManager {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "https://graph.facebook.com"
	}
	if cfg.GraphVersion != "" {
		base += "/" + strings.Trim(cfg.GraphVersion, "/")
	}
	return &PageManager{
		baseURL:   base,
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
		userToken: cfg.UserToken,
		pageID:    cfg.PageID,
		client:    &http.Client{Timeout: timeout},
	}
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ExchangeLongLivedToken trades the short-lived user token for a long-lived one.
func (m *PageManager) ExchangeLongLivedToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", m.appID)
	params.Set("client_secret", m.appSecret)
	params.Set("fb_exchange_token", m.userToken)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := m.do(ctx, http.MethodGet, "/oauth/access_token?"+params.Encode(), nil, &resp); err != nil {
		return "", fmt.Errorf("exchange token: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("exchange token: empty access_token")
	}
	return resp.AccessToken, nil
}

// PageAccessToken finds the configured page among the accounts userToken manages.
func (m *PageManager) PageAccessToken(ctx context.Context, userToken string) (string, error) {
	params := url.Values{}
	params.Set("access_token", userToken)
	params.Set("fields", "id,name,access_token")

	var resp struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := m.do(ctx, http.MethodGet, "/me/accounts?"+params.Encode(), nil, &resp); err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}

	for _, account := range resp.Data {
		if account.ID == m.pageID {
			return account.AccessToken, nil
		}
	}
	return "", ErrPageNotManaged
}

// ResolvePageToken exchanges the user token when app credentials are set and
// resolves the page token with whichever user token is available.
func (m *PageManager) ResolvePageToken(ctx context.Context) (string, error) {
	if m.userToken == "" || m.pageID == "" {
		return "", fmt.Errorf("facebook user token or page id not configured")
	}

	userToken := m.userToken
	if m.appID != "" && m.appSecret != "" {
		longLived, err := m.ExchangeLongLivedToken(ctx)
		if err != nil {
			return "", err
		}
		userToken = longLived
	}

	return m.PageAccessToken(ctx, userToken)
}

// PostToPage publishes message on the page feed and returns the post id.
func (m *PageManager) PostToPage(ctx context.Context, pageToken, message string) (string, error) {
	if pageToken == "" {
		return "", ErrMissingPageToken
	}

	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", pageToken)

	var resp struct {
		ID string `json:"id"`
	}
	if err := m.do(ctx, http.MethodPost, "/"+url.PathEscape(m.pageID)+"/feed", form, &resp); err != nil {
		return "", fmt.Errorf("post to page: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("post to page: empty post id")
	}
	return resp.ID, nil
}

func (m *PageManager) do(ctx context.Context, method, path string, form url.Values, v any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var gErr graphError
		if json.Unmarshal(payload, &gErr) == nil && gErr.Error.Message != "" {
			return fmt.Errorf("graph error %s: %s (code %d)", resp.Status, gErr.Error.Message, gErr.Error.Code)
		}
		return fmt.Errorf("graph error %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
