package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"AffairsRelay/internal/digest"
	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/ports"
)

// Channel is one publishing destination with the markup it understands.
type Channel struct {
	Name      string
	Dialect   digest.Dialect
	Publisher ports.Publisher
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Discoverer ports.ArticleDiscoverer
	Store      ports.SeenStore
	Builder    *Builder
	Formatter  *digest.Formatter
	Channels   []Channel
	ListingURL string
	Location   *time.Location
	Now        func() time.Time
	Logger     *slog.Logger
}

// Pipeline runs one discover, dedup, extract, translate, publish pass.
type Pipeline struct {
	discoverer ports.ArticleDiscoverer
	store      ports.SeenStore
	builder    *Builder
	formatter  *digest.Formatter
	channels   []Channel
	listingURL string
	location   *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		discoverer: deps.Discoverer,
		store:      deps.Store,
		builder:    deps.Builder,
		formatter:  deps.Formatter,
		channels:   deps.Channels,
		listingURL: deps.ListingURL,
		location:   deps.Location,
		now:        deps.Now,
		logger:     deps.Logger,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.location == nil {
		p.location = time.UTC
	}
	if p.formatter == nil {
		p.formatter = digest.NewFormatter(digest.Labels{})
	}
	return p
}

// Run executes a single pass. Only discovery setup and seen-store failures
// abort the run; per-article and per-channel problems are logged and recorded.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	if p.discoverer == nil || p.store == nil || p.builder == nil {
		return domain.RunReport{}, errors.New("pipeline is not fully wired")
	}

	report := domain.RunReport{RunID: uuid.NewString()}
	log := p.runLogger(report.RunID)

	report.State = domain.StateDiscovering
	urls, err := p.discoverer.Discover(ctx, p.listingURL)
	if err != nil {
		return report, fmt.Errorf("discover articles: %w", err)
	}
	report.Discovered = len(urls)
	log.Info("articles discovered", "count", len(urls))

	report.State = domain.StateFiltering
	fresh, err := FilterNew(ctx, p.store, urls)
	if err != nil {
		return report, fmt.Errorf("filter seen articles: %w", err)
	}
	report.Fresh = fresh
	if len(fresh) == 0 {
		report.State = domain.StateEmpty
		log.Info("no new articles")
		return report, nil
	}

	// Fresh URLs are recorded before extraction so skipped or failed
	// articles are not retried on the next run.
	if err := p.store.Save(ctx, fresh, p.now().UTC()); err != nil {
		return report, fmt.Errorf("save seen articles: %w", err)
	}
	log.Info("new articles recorded", "count", len(fresh))

	report.State = domain.StateExtracting
	batch := p.builder.Build(ctx, fresh)
	report.Articles = batch.Len()
	if batch.Len() == 0 {
		report.State = domain.StateNoSurvivors
		log.Info("no articles survived extraction")
		return report, nil
	}

	report.State = domain.StateFormatting
	now := p.now().In(p.location)
	messages := make([]string, len(p.channels))
	for i, ch := range p.channels {
		messages[i] = p.formatter.Compose(batch, ch.Dialect, now)
	}

	report.State = domain.StatePublishing
	for i, ch := range p.channels {
		delivery := domain.Delivery{Channel: ch.Name}
		if ch.Publisher == nil {
			delivery.Err = fmt.Errorf("channel %s has no publisher", ch.Name)
		} else {
			delivery.Err = ch.Publisher.Publish(ctx, messages[i])
		}

		if delivery.Err != nil {
			log.Warn("channel delivery failed", "channel", ch.Name, "error", delivery.Err)
		} else {
			log.Info("channel delivery complete", "channel", ch.Name, "articles", batch.Len())
		}
		report.Deliveries = append(report.Deliveries, delivery)
	}

	return report, nil
}

func (p *Pipeline) runLogger(runID string) *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.logger.With("run_id", runID)
}
