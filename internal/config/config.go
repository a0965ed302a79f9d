package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Kolkata"

	configPathEnv        = "AFFAIRS_RELAY_CONFIG"
	dotenvPathEnv        = "AFFAIRS_RELAY_DOTENV"
	logLevelEnv          = "LOG_LEVEL"
	mongoURIEnv          = "MONGO_URI"
	mongoDatabaseEnv     = "MONGO_DB"
	botTokenEnv          = "BOT_TOKEN"
	telegramChannelEnv   = "TELEGRAM_CHANNEL"
	appIDEnv             = "APP_ID"
	appSecretEnv         = "APP_SECRET"
	accessTokenEnv       = "ACCESS_TOKEN"
	legacyAccessTokenEnv = "ACESS_TOKEN"
	pageIDEnv            = "PAGE_ID"
	channelsEnv          = "RELAY_CHANNELS"
	translatorBackendEnv = "TRANSLATOR_BACKEND"
	targetLanguageEnv    = "TRANSLATOR_TARGET"
	chatGPTAPIKeyEnv     = "CHATGPT_API_KEY"
	chatGPTModelEnv      = "CHATGPT_MODEL"
	scheduleEnv          = "RELAY_SCHEDULE"
)

// Channel and backend identifiers accepted in configuration.
const (
	ChannelTelegram = "telegram"
	ChannelFacebook = "facebook"

	BackendGoogle  = "google"
	BackendChatGPT = "chatgpt"

	DialectHTML  = "html"
	DialectPlain = "plain"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Source        SourceConfig       `yaml:"source"`
	Storage       StorageConfig      `yaml:"storage"`
	Translation   TranslationConfig  `yaml:"translation"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Digest        DigestConfig       `yaml:"digest"`
	Channels      []string           `yaml:"channels"`
	Notifications NotificationConfig `yaml:"notifications"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig describes the listing site to crawl.
type SourceConfig struct {
	ListingURL string        `yaml:"listingUrl"`
	Layout     string        `yaml:"layout"`
	MaxPages   int           `yaml:"maxPages"`
	UserAgent  string        `yaml:"userAgent"`
	Timeout    time.Duration `yaml:"timeout"`
}

// StorageConfig points at the seen-URL store.
type StorageConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// TranslationConfig selects the translation backend and languages.
type TranslationConfig struct {
	Backend  string        `yaml:"backend"`
	Source   string        `yaml:"source"`
	Target   string        `yaml:"target"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ChatGPTConfig defines how to contact an OpenAI-compatible API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// DigestConfig holds the shared header, labels and promo of every message.
type DigestConfig struct {
	Title          string `yaml:"title"`
	DateLayout     string `yaml:"dateLayout"`
	Timezone       string `yaml:"timezone"`
	ParagraphLimit int    `yaml:"paragraphLimit"`
	SourceName     string `yaml:"sourceName"`
	TargetName     string `yaml:"targetName"`
	SourceFlag     string `yaml:"sourceFlag"`
	TargetFlag     string `yaml:"targetFlag"`
	Promo          string `yaml:"promo"`

	location *time.Location
}

// Location resolves the digest timezone string to a time.Location.
func (d DigestConfig) Location() *time.Location {
	if d.location != nil {
		return d.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ScheduleConfig switches the relay from a single pass to a cron loop.
// An empty Cron keeps the single-pass behaviour.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Facebook FacebookConfig `yaml:"facebook"`
}

// TelegramConfig wires all data required to broadcast to a channel.
type TelegramConfig struct {
	BotToken  string        `yaml:"botToken"`
	ChatID    string        `yaml:"chatId"`
	ChunkSize int           `yaml:"chunkSize"`
	Dialect   string        `yaml:"dialect"`
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	// DisablePreview hides link previews, which Telegram shows by default.
	DisablePreview bool `yaml:"disablePreview"`
}

// FacebookConfig wires the Graph API page publisher.
type FacebookConfig struct {
	AppID        string        `yaml:"appId"`
	AppSecret    string        `yaml:"appSecret"`
	UserToken    string        `yaml:"userToken"`
	PageID       string        `yaml:"pageId"`
	GraphVersion string        `yaml:"graphVersion"`
	BaseURL      string        `yaml:"baseUrl"`
	Dialect      string        `yaml:"dialect"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Load reads .env and YAML configuration (if present), applies environment
// overrides and validates the result.
func Load() (Config, error) {
	cfg := defaultConfig()

	dotenv := os.Getenv(dotenvPathEnv)
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", dotenv, err)
	}

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	cfg.deriveLanguageLabels()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Storage.URI, mongoURIEnv)
	setString(&c.Storage.Database, mongoDatabaseEnv)
	setString(&c.Notifications.Telegram.BotToken, botTokenEnv)
	setString(&c.Notifications.Telegram.ChatID, telegramChannelEnv)
	setString(&c.Notifications.Facebook.AppID, appIDEnv)
	setString(&c.Notifications.Facebook.AppSecret, appSecretEnv)
	setString(&c.Notifications.Facebook.UserToken, legacyAccessTokenEnv)
	setString(&c.Notifications.Facebook.UserToken, accessTokenEnv)
	setString(&c.Notifications.Facebook.PageID, pageIDEnv)
	setString(&c.Translation.Backend, translatorBackendEnv)
	setString(&c.Translation.Target, targetLanguageEnv)
	setString(&c.ChatGPT.APIKey, chatGPTAPIKeyEnv)
	setString(&c.ChatGPT.Model, chatGPTModelEnv)
	setString(&c.Schedule.Cron, scheduleEnv)

	if v := os.Getenv(channelsEnv); v != "" {
		c.Channels = splitAndTrim(v)
	}
}

// normalize folds names compared against constants to lower case.
func (c *Config) normalize() {
	c.Translation.Backend = strings.ToLower(strings.TrimSpace(c.Translation.Backend))
	c.Notifications.Telegram.Dialect = strings.ToLower(strings.TrimSpace(c.Notifications.Telegram.Dialect))
	c.Notifications.Facebook.Dialect = strings.ToLower(strings.TrimSpace(c.Notifications.Facebook.Dialect))
	for i, ch := range c.Channels {
		c.Channels[i] = strings.ToLower(strings.TrimSpace(ch))
	}
}

func (c *Config) bindTimezone() {
	tz := c.Digest.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Digest.location = loc
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source.ListingURL) == "" {
		return fmt.Errorf("source.listingUrl must be set")
	}
	if c.Source.MaxPages < 0 {
		return fmt.Errorf("source.maxPages cannot be negative")
	}
	if c.Digest.ParagraphLimit <= 0 {
		return fmt.Errorf("digest.paragraphLimit must be positive")
	}
	if c.Notifications.Telegram.ChunkSize <= 0 {
		return fmt.Errorf("notifications.telegram.chunkSize must be positive")
	}

	switch strings.ToLower(c.Translation.Backend) {
	case BackendGoogle, BackendChatGPT:
	default:
		return fmt.Errorf("unknown translation backend %q", c.Translation.Backend)
	}

	for _, d := range []string{c.Notifications.Telegram.Dialect, c.Notifications.Facebook.Dialect} {
		if d != DialectHTML && d != DialectPlain {
			return fmt.Errorf("unknown dialect %q", d)
		}
	}

	seen := map[string]bool{}
	for _, ch := range c.Channels {
		if ch != ChannelTelegram && ch != ChannelFacebook {
			return fmt.Errorf("unknown channel %q", ch)
		}
		if seen[ch] {
			return fmt.Errorf("channel %q listed twice", ch)
		}
		seen[ch] = true
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Source: SourceConfig{
			ListingURL: "https://www.gktoday.in/current-affairs/",
			Layout:     "gktoday",
			Timeout:    10 * time.Second,
		},
		Storage: StorageConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "news_scraper",
			Collection: "scraped_urls",
		},
		Translation: TranslationConfig{
			Backend:  BackendGoogle,
			Source:   "en",
			Target:   "gu",
			Endpoint: "https://translate.googleapis.com/translate_a/single",
			Timeout:  10 * time.Second,
		},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You are a news translator. Reply with the translation only.",
		},
		Digest: DigestConfig{
			Title:          "Current Affairs",
			DateLayout:     "02-Jan-2006",
			Timezone:       defaultTimezone,
			ParagraphLimit: 400,
			SourceName:     "English",
			SourceFlag:     "🇬🇧",
			Promo: "🚀 Daily Current Affairs નો ખજાનો એટલે CurrentAdda 🌐\n\n" +
				"🇬🇧 English & 🇮🇳 Gujarati Content\n" +
				"Join us for the latest news:\n" +
				"👉 Facebook: https://www.facebook.com/currentaddaa\n" +
				"👉 Telegram: https://telegram.me/currentadda",
		},
		Channels: []string{ChannelTelegram, ChannelFacebook},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{
				ChatID:    "@currentadda",
				ChunkSize: 4096,
				Dialect:   DialectHTML,
				Endpoint:  "https://api.telegram.org/bot%s/%s",
				Timeout:   10 * time.Second,
			},
			Facebook: FacebookConfig{
				GraphVersion: "v21.0",
				BaseURL:      "https://graph.facebook.com",
				Dialect:      DialectPlain,
				Timeout:      10 * time.Second,
			},
		},
	}
}
