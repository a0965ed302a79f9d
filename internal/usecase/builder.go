package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/ports"
)

// Builder extracts and translates articles into an aligned bilingual batch.
type Builder struct {
	extractor  ports.ArticleExtractor
	translator ports.Translator
	source     string
	target     string
	logger     *slog.Logger
}

// NewBuilder wires the extractor with a translator for source -> target.
func NewBuilder(extractor ports.ArticleExtractor, translator ports.Translator, source, target string, log *slog.Logger) *Builder {
	return &Builder{
		extractor:  extractor,
		translator: translator,
		source:     source,
		target:     target,
		logger:     log,
	}
}

// Build walks urls in order. Skipped, failed and untranslatable articles are
// left out of all four sequences; survivors are appended atomically.
func (b *Builder) Build(ctx context.Context, urls []string) domain.BilingualBatch {
	var batch domain.BilingualBatch

	for _, u := range urls {
		res := b.extractor.Extract(ctx, u)
		switch res.Outcome {
		case domain.OutcomeSkip:
			b.log(slog.LevelInfo, "article skipped", "url", u, "reason", res.Reason)
			continue
		case domain.OutcomeError:
			b.log(slog.LevelWarn, "article extraction failed", "url", u, "error", res.Err)
			continue
		case domain.OutcomeSuccess:
		default:
			b.log(slog.LevelWarn, "unknown extraction outcome", "url", u, "outcome", res.Outcome.String())
			continue
		}

		article, err := b.translate(ctx, res.Article)
		if err != nil {
			b.log(slog.LevelWarn, "article translation failed", "url", u, "error", err)
			continue
		}

		batch.Append(article)
	}

	return batch
}

func (b *Builder) translate(ctx context.Context, raw domain.RawArticle) (domain.BilingualArticle, error) {
	title, err := b.translator.Translate(ctx, raw.Title, b.source, b.target)
	if err != nil {
		return domain.BilingualArticle{}, fmt.Errorf("translate title: %w", err)
	}

	paragraph, err := b.translator.Translate(ctx, raw.Paragraph, b.source, b.target)
	if err != nil {
		return domain.BilingualArticle{}, fmt.Errorf("translate paragraph: %w", err)
	}

	return domain.BilingualArticle{
		OriginalTitle:       raw.Title,
		OriginalParagraph:   raw.Paragraph,
		TranslatedTitle:     title,
		TranslatedParagraph: paragraph,
	}, nil
}

func (b *Builder) log(level slog.Level, msg string, args ...any) {
	if b.logger != nil {
		b.logger.Log(context.Background(), level, msg, args...)
	}
}
