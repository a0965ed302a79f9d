package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"AffairsRelay/internal/config"
	"AffairsRelay/internal/digest"
	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/infrastructure/facebook"
	"AffairsRelay/internal/infrastructure/llm"
	"AffairsRelay/internal/infrastructure/parser"
	"AffairsRelay/internal/infrastructure/scheduler"
	"AffairsRelay/internal/infrastructure/storage"
	"AffairsRelay/internal/infrastructure/telegram"
	"AffairsRelay/internal/infrastructure/translate"
	"AffairsRelay/internal/logging"
	"AffairsRelay/internal/ports"
	"AffairsRelay/internal/scanner"
	"AffairsRelay/internal/usecase"
)

// Application wires configs to use cases and owns the store connection.
type Application struct {
	cfg    config.Config
	store  storage.Store
	deps   usecase.PipelineDeps
	logger *slog.Logger
}

// New opens the seen store and builds the pipeline from configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	layout, err := scanner.NewRegistry().Resolve(cfg.Source.Layout)
	if err != nil {
		return nil, fmt.Errorf("resolve layout: %w", err)
	}

	translator, err := newTranslator(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := newChannels(cfg, baseLogger); err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := &http.Client{Timeout: cfg.Source.Timeout}
	discoverer := parser.NewListingDiscoverer(layout, parser.DiscovererOptions{
		Client:    client,
		UserAgent: cfg.Source.UserAgent,
		MaxPages:  cfg.Source.MaxPages,
	}, baseLogger.With("component", "discoverer"))
	extractor := parser.NewArticleExtractor(layout, client, cfg.Source.UserAgent, baseLogger.With("component", "extractor"))

	d := cfg.Digest
	formatter := digest.NewFormatter(digest.Labels{
		Title:          d.Title,
		DateLayout:     d.DateLayout,
		SourceName:     d.SourceName,
		TargetName:     d.TargetName,
		SourceFlag:     d.SourceFlag,
		TargetFlag:     d.TargetFlag,
		Promo:          d.Promo,
		ParagraphLimit: d.ParagraphLimit,
	})

	deps := usecase.PipelineDeps{
		Discoverer: discoverer,
		Store:      store,
		Builder: usecase.NewBuilder(extractor, translator,
			cfg.Translation.Source, cfg.Translation.Target, baseLogger.With("component", "builder")),
		Formatter:  formatter,
		ListingURL: cfg.Source.ListingURL,
		Location:   d.Location(),
		Logger:     baseLogger.With("component", "pipeline"),
	}

	return &Application{cfg: cfg, store: store, deps: deps, logger: baseLogger}, nil
}

// Run performs a single pipeline pass with freshly built channels, so the
// Facebook page token is resolved once per run.
func (a *Application) Run(ctx context.Context) (domain.RunReport, error) {
	channels, err := newChannels(a.cfg, a.logger)
	if err != nil {
		return domain.RunReport{}, err
	}
	deps := a.deps
	deps.Channels = channels

	report, err := usecase.NewPipeline(deps).Run(ctx)
	if err != nil {
		return report, err
	}

	delivered := 0
	for _, d := range report.Deliveries {
		if d.Delivered() {
			delivered++
		}
	}
	a.logger.Info("run finished",
		"run_id", report.RunID,
		"state", string(report.State),
		"discovered", report.Discovered,
		"fresh", len(report.Fresh),
		"articles", report.Articles,
		"channels_delivered", delivered,
		"channels_total", len(report.Deliveries),
	)
	return report, nil
}

// Scheduled reports whether a cron schedule is configured.
func (a *Application) Scheduled() bool {
	return a.cfg.Schedule.Cron != ""
}

// Serve runs one pass immediately and then one per cron trigger until ctx is
// done. Failed passes are logged; the next trigger retries from scratch.
func (a *Application) Serve(ctx context.Context) error {
	sched, err := scheduler.NewCronScheduler(a.cfg.Schedule.Cron, a.cfg.Digest.Location(), a.logger.With("component", "scheduler"))
	if err != nil {
		return err
	}

	var running sync.Mutex
	job := func(ctx context.Context) {
		if !running.TryLock() {
			a.logger.Warn("previous run still in progress, trigger skipped")
			return
		}
		defer running.Unlock()

		if _, err := a.Run(ctx); err != nil {
			a.logger.Error("run failed", "error", err)
		}
	}

	job(ctx)
	return sched.Run(ctx, job)
}

// Close releases the seen store.
func (a *Application) Close(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	return a.store.Close(ctx)
}

func newTranslator(cfg config.Config) (ports.Translator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Translation.Backend)) {
	case config.BackendGoogle:
		return translate.NewGoogleTranslator(cfg.Translation.Endpoint, &http.Client{Timeout: cfg.Translation.Timeout}), nil
	case config.BackendChatGPT:
		if cfg.ChatGPT.APIKey == "" {
			return nil, fmt.Errorf("chatgpt translator requires an api key")
		}
		return llm.NewChatGPTTranslator(cfg.ChatGPT, cfg.Translation.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown translator backend %q", cfg.Translation.Backend)
	}
}

// newChannels keeps the configured order; every channel is attempted per run.
func newChannels(cfg config.Config, log *slog.Logger) ([]usecase.Channel, error) {
	channels := make([]usecase.Channel, 0, len(cfg.Channels))
	for _, name := range cfg.Channels {
		switch name {
		case config.ChannelTelegram:
			tc := cfg.Notifications.Telegram
			dialect, err := digest.DialectByName(tc.Dialect)
			if err != nil {
				return nil, fmt.Errorf("telegram dialect: %w", err)
			}
			parseMode := ""
			if dialect.Name == digest.HTML.Name {
				parseMode = tgbotapi.ModeHTML
			}
			publisher := telegram.NewPublisher(
				telegram.NewBotAPI(tc.BotToken, tc.Endpoint, tc.Timeout),
				telegram.Options{
					ChatID:         tc.ChatID,
					ParseMode:      parseMode,
					ChunkSize:      tc.ChunkSize,
					DisablePreview: tc.DisablePreview,
				},
				log.With("component", "telegram"),
			)
			channels = append(channels, usecase.Channel{Name: name, Dialect: dialect, Publisher: publisher})
		case config.ChannelFacebook:
			fc := cfg.Notifications.Facebook
			dialect, err := digest.DialectByName(fc.Dialect)
			if err != nil {
				return nil, fmt.Errorf("facebook dialect: %w", err)
			}
			manager := facebook.NewPageManager(fc)
			channels = append(channels, usecase.Channel{
				Name:      name,
				Dialect:   dialect,
				Publisher: facebook.NewPublisher(manager, manager, log.With("component", "facebook")),
			})
		default:
			return nil, fmt.Errorf("unknown channel %q", name)
		}
	}
	return channels, nil
}
