package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, logLevelEnv, mongoURIEnv, mongoDatabaseEnv, botTokenEnv, telegramChannelEnv,
		appIDEnv, appSecretEnv, accessTokenEnv, legacyAccessTokenEnv, pageIDEnv, channelsEnv,
		translatorBackendEnv, targetLanguageEnv, chatGPTAPIKeyEnv, chatGPTModelEnv, scheduleEnv,
	} {
		t.Setenv(key, "")
	}
	t.Setenv(dotenvPathEnv, filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "https://www.gktoday.in/current-affairs/", cfg.Source.ListingURL)
	require.Equal(t, "news_scraper", cfg.Storage.Database)
	require.Equal(t, "scraped_urls", cfg.Storage.Collection)
	require.Equal(t, 4096, cfg.Notifications.Telegram.ChunkSize)
	require.Equal(t, 400, cfg.Digest.ParagraphLimit)
	require.Equal(t, []string{ChannelTelegram, ChannelFacebook}, cfg.Channels)
	require.Equal(t, DialectHTML, cfg.Notifications.Telegram.Dialect)
	require.Equal(t, DialectPlain, cfg.Notifications.Facebook.Dialect)
	require.NotNil(t, cfg.Digest.Location())
	require.Equal(t, "mongodb://localhost:27017", cfg.Storage.URI)
	require.Equal(t, "Gujarati", cfg.Digest.TargetName)
	require.Equal(t, "🇮🇳", cfg.Digest.TargetFlag)
	require.Equal(t, "English", cfg.Digest.SourceName)
	require.Equal(t, "🇬🇧", cfg.Digest.SourceFlag)
}

func TestTargetLabelsFollowTranslatorTarget(t *testing.T) {
	isolate(t)
	t.Setenv(targetLanguageEnv, "hi")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Hindi", cfg.Digest.TargetName)
	require.Equal(t, "🇮🇳", cfg.Digest.TargetFlag)

	t.Setenv(targetLanguageEnv, "fr")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "French", cfg.Digest.TargetName)
	require.Equal(t, "🇫🇷", cfg.Digest.TargetFlag)
}

func TestLanguageHelpersFallBack(t *testing.T) {
	require.Equal(t, "not a code", languageName("not a code"))
	require.Empty(t, languageFlag("not a code"))
}

func TestLoadNormalizesNames(t *testing.T) {
	isolate(t)
	t.Setenv(translatorBackendEnv, " Google ")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendGoogle, cfg.Translation.Backend)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(mongoURIEnv, "mongodb://db:27017")
	t.Setenv(mongoDatabaseEnv, "relay")
	t.Setenv(botTokenEnv, "123:abc")
	t.Setenv(telegramChannelEnv, "-100200")
	t.Setenv(appIDEnv, "app")
	t.Setenv(appSecretEnv, "secret")
	t.Setenv(legacyAccessTokenEnv, "legacy-token")
	t.Setenv(pageIDEnv, "42")
	t.Setenv(channelsEnv, " Telegram , ")
	t.Setenv(scheduleEnv, "30 7 * * *")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "mongodb://db:27017", cfg.Storage.URI)
	require.Equal(t, "relay", cfg.Storage.Database)
	require.Equal(t, "123:abc", cfg.Notifications.Telegram.BotToken)
	require.Equal(t, "-100200", cfg.Notifications.Telegram.ChatID)
	require.Equal(t, "legacy-token", cfg.Notifications.Facebook.UserToken)
	require.Equal(t, "42", cfg.Notifications.Facebook.PageID)
	require.Equal(t, []string{ChannelTelegram}, cfg.Channels)
	require.Equal(t, "30 7 * * *", cfg.Schedule.Cron)

	t.Setenv(accessTokenEnv, "fresh-token")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "fresh-token", cfg.Notifications.Facebook.UserToken)
}

func TestLoadYAMLAndDotenv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "relay.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
source:
  listingUrl: https://example.org/news/
  maxPages: 5
  timeout: 3s
digest:
  targetName: Hindi
  timezone: UTC
channels: [facebook]
notifications:
  telegram:
    chunkSize: 100
`), 0o600))
	t.Setenv(configPathEnv, yamlPath)

	envPath := filepath.Join(dir, "relay.env")
	require.NoError(t, os.WriteFile(envPath, []byte("PAGE_ID=from-dotenv\n"), 0o600))
	t.Setenv(dotenvPathEnv, envPath)
	// godotenv never overrides a variable that exists, even when empty;
	// t.Setenv above restores the original value on cleanup.
	require.NoError(t, os.Unsetenv(pageIDEnv))

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "https://example.org/news/", cfg.Source.ListingURL)
	require.Equal(t, 5, cfg.Source.MaxPages)
	require.Equal(t, 3*time.Second, cfg.Source.Timeout)
	require.Equal(t, "Hindi", cfg.Digest.TargetName)
	require.Equal(t, "English", cfg.Digest.SourceName)
	require.Equal(t, time.UTC, cfg.Digest.Location())
	require.Equal(t, []string{ChannelFacebook}, cfg.Channels)
	require.Equal(t, 100, cfg.Notifications.Telegram.ChunkSize)
	require.Equal(t, "from-dotenv", cfg.Notifications.Facebook.PageID)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := map[string]func(*Config){
		"empty listing":   func(c *Config) { c.Source.ListingURL = "" },
		"chunk size":      func(c *Config) { c.Notifications.Telegram.ChunkSize = 0 },
		"paragraph limit": func(c *Config) { c.Digest.ParagraphLimit = -1 },
		"backend":         func(c *Config) { c.Translation.Backend = "deepl" },
		"dialect":         func(c *Config) { c.Notifications.Facebook.Dialect = "markdown" },
		"channel":         func(c *Config) { c.Channels = []string{"sms"} },
		"duplicate":       func(c *Config) { c.Channels = []string{ChannelTelegram, ChannelTelegram} },
		"max pages":       func(c *Config) { c.Source.MaxPages = -2 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, defaultConfig().Validate())
}
