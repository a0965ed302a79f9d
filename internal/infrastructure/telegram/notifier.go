package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"AffairsRelay/internal/digest"
	"AffairsRelay/internal/ports"
)

// MaxMessageLength is the Bot API limit for one sendMessage text.
const MaxMessageLength = 4096

// ErrNotConfigured is returned when the bot token or destination is missing.
var ErrNotConfigured = errors.New("telegram publisher misconfigured")

// Sender is the slice of tgbotapi.BotAPI the publisher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Publisher broadcasts digests to a Telegram channel in fixed-size chunks.
type Publisher struct {
	sender    Sender
	chatID    string
	parseMode string
	chunkSize int
	noPreview bool
	logger    *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// Options configures the publisher.
type Options struct {
	ChatID    string
	ParseMode string
	ChunkSize int
	// DisablePreview suppresses link previews; they are shown by default.
	DisablePreview bool
}

// NewBotAPI builds a Bot API client without the getMe round trip that
// tgbotapi.NewBotAPI performs. endpoint uses the "https://host/bot%s/%s" form.
func NewBotAPI(token, endpoint string, timeout time.Duration) *tgbotapi.BotAPI {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	api := &tgbotapi.BotAPI{
		Token:  token,
		Client: &http.Client{Timeout: timeout},
		Buffer: 100,
	}
	api.SetAPIEndpoint(endpoint)
	return api
}

// NewPublisher wires a sender with the destination channel.
func NewPublisher(sender Sender, opts Options, log *slog.Logger) *Publisher {
	if opts.ChunkSize <= 0 || opts.ChunkSize > MaxMessageLength {
		opts.ChunkSize = MaxMessageLength
	}
	return &Publisher{
		sender:    sender,
		chatID:    strings.TrimSpace(opts.ChatID),
		parseMode: opts.ParseMode,
		chunkSize: opts.ChunkSize,
		noPreview: opts.DisablePreview,
		logger:    log,
	}
}

// Publish sends every chunk in order. A failed chunk is logged and the rest
// are still attempted; the joined chunk errors are returned for reporting.
func (p *Publisher) Publish(ctx context.Context, message string) error {
	chunks := digest.Split(message, p.chunkSize)

	var errs []error
	for i, chunk := range chunks {
		if err := p.sendChunk(ctx, chunk); err != nil {
			p.warn("telegram chunk failed", "chunk", i+1, "of", len(chunks), "error", err)
			errs = append(errs, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err))
			continue
		}
		p.debug("telegram chunk sent", "chunk", i+1, "of", len(chunks))
	}

	return errors.Join(errs...)
}

func (p *Publisher) sendChunk(ctx context.Context, text string) error {
	if p.sender == nil || p.chatID == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := p.newMessage(text)
	msg.ParseMode = p.parseMode
	msg.DisableWebPagePreview = p.noPreview

	if _, err := p.sender.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// newMessage addresses numeric chat ids directly and @usernames as channels.
func (p *Publisher) newMessage(text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(p.chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(p.chatID, text)
}

func (p *Publisher) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Publisher) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
