package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AffairsRelay/internal/config"
	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/logging"
)

const siteArticle = `<html><body>
<h1 id="list" style="text-align:center; font-size:20px;">Budget passed</h1>
<div class="featured_image" style="margin-bottom:-5px;"><img src="/x.jpg"></div>
<p>Parliament approved the annual budget.</p>
</body></html>`

const siteArticleWithoutImage = `<html><body>
<h1 id="list" style="text-align:center; font-size:20px;">Quiz of the day</h1>
<p>No featured image here.</p>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/current-affairs/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/current-affairs/page/1/" {
			_, _ = w.Write([]byte(`<html><body><p>nothing</p></body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><body>
<h1 id="list"><a href="/budget/">Budget passed</a></h1>
<h1 id="list"><a href="/quiz/">Quiz of the day</a></h1>
</body></html>`))
	})
	mux.HandleFunc("/budget/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(siteArticle))
	})
	mux.HandleFunc("/quiz/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(siteArticleWithoutImage))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTranslateServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		payload, err := json.Marshal([]any{[]any{[]any{"gu:" + q, q}}, nil, "en"})
		assert.NoError(t, err)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

type sentMessages struct {
	mu    sync.Mutex
	texts []string
	modes []string
}

func (s *sentMessages) snapshot() (texts, modes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...), append([]string(nil), s.modes...)
}

func newBotServer(t *testing.T, sent *sentMessages) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		sent.mu.Lock()
		sent.texts = append(sent.texts, r.PostForm.Get("text"))
		sent.modes = append(sent.modes, r.PostForm.Get("parse_mode"))
		sent.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":-100,"type":"channel"}}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, site, translator, bot string) config.Config {
	t.Helper()
	return config.Config{
		Logging: config.LoggingConfig{Level: "error"},
		Source: config.SourceConfig{
			ListingURL: site + "/current-affairs/",
			Layout:     "gktoday",
			Timeout:    5 * time.Second,
		},
		Storage: config.StorageConfig{
			URI: "sqlite://" + filepath.Join(t.TempDir(), "seen.db"),
		},
		Translation: config.TranslationConfig{
			Backend:  config.BackendGoogle,
			Source:   "en",
			Target:   "gu",
			Endpoint: translator,
			Timeout:  5 * time.Second,
		},
		Digest: config.DigestConfig{
			Title:      "Current Affairs",
			SourceName: "English",
			TargetName: "Gujarati",
			Promo:      "Join us",
		},
		Channels: []string{config.ChannelTelegram},
		Notifications: config.NotificationConfig{
			Telegram: config.TelegramConfig{
				BotToken:  "token",
				ChatID:    "@currentadda",
				ChunkSize: 4096,
				Dialect:   config.DialectHTML,
				Endpoint:  bot + "/bot%s/%s",
			},
		},
	}
}

func TestApplicationRunsEndToEnd(t *testing.T) {
	var sent sentMessages
	cfg := testConfig(t, newSite(t).URL, newTranslateServer(t).URL, newBotServer(t, &sent).URL)

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close(context.Background()) })

	report, err := application.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StatePublishing, report.State)
	require.Equal(t, 2, report.Discovered)
	require.Equal(t, 1, report.Articles)
	require.Len(t, report.Deliveries, 1)
	require.True(t, report.Deliveries[0].Delivered())

	texts, modes := sent.snapshot()
	require.Len(t, texts, 1)
	require.Equal(t, "HTML", modes[0])
	msg := texts[0]
	assert.Contains(t, msg, "📊 Total New Articles: 1")
	assert.Contains(t, msg, "<b>English Title:</b> Budget passed")
	assert.Contains(t, msg, "gu:Parliament approved the annual budget.")
	assert.NotContains(t, msg, "Quiz of the day")
	assert.True(t, strings.HasSuffix(msg, "Join us"))

	again, err := application.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StateEmpty, again.State)
	texts, _ = sent.snapshot()
	require.Len(t, texts, 1)
}

func TestNewRejectsUnknownChannel(t *testing.T) {
	cfg := testConfig(t, "http://site.invalid", "http://translate.invalid", "http://bot.invalid")
	cfg.Channels = []string{"carrier-pigeon"}

	_, err := New(context.Background(), cfg, logging.Discard())
	require.ErrorContains(t, err, "carrier-pigeon")
}

func TestNewRequiresChatGPTKey(t *testing.T) {
	cfg := testConfig(t, "http://site.invalid", "http://translate.invalid", "http://bot.invalid")
	cfg.Translation.Backend = config.BackendChatGPT

	_, err := New(context.Background(), cfg, logging.Discard())
	require.ErrorContains(t, err, "api key")
}

func TestNewAcceptsBackendInAnyCase(t *testing.T) {
	cfg := testConfig(t, "http://site.invalid", "http://translate.invalid", "http://bot.invalid")
	cfg.Translation.Backend = "Google"

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, application.Close(context.Background()))
}

func TestServeRunsImmediatelyThenWaits(t *testing.T) {
	var sent sentMessages
	cfg := testConfig(t, newSite(t).URL, newTranslateServer(t).URL, newBotServer(t, &sent).URL)
	cfg.Schedule.Cron = "@every 1h"

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close(context.Background()) })
	require.True(t, application.Scheduled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx) }()

	require.Eventually(t, func() bool {
		texts, _ := sent.snapshot()
		return len(texts) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeRejectsBadSchedule(t *testing.T) {
	cfg := testConfig(t, "http://site.invalid", "http://translate.invalid", "http://bot.invalid")
	cfg.Schedule.Cron = "whenever"

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close(context.Background()) })

	require.ErrorContains(t, application.Serve(context.Background()), "whenever")
}
