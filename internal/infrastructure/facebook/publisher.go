package facebook

import (
	"context"
	"log/slog"

	"AffairsRelay/internal/ports"
)

// TokenResolver yields the page access token for the current run.
type TokenResolver interface {
	ResolvePageToken(ctx context.Context) (string, error)
}

// PagePoster publishes a message with an already resolved page token.
type PagePoster interface {
	PostToPage(ctx context.Context, pageToken, message string) (string, error)
}

// Publisher posts whole digests to a Facebook page. The page token is
// resolved at most once per Publisher, i.e. once per pipeline run.
type Publisher struct {
	resolver TokenResolver
	poster   PagePoster
	logger   *slog.Logger

	resolved bool
	token    string
	lastPost string
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher wires the token resolver and the poster; PageManager serves as both.
func NewPublisher(resolver TokenResolver, poster PagePoster, log *slog.Logger) *Publisher {
	return &Publisher{resolver: resolver, poster: poster, logger: log}
}

// Publish posts message in a single call; no chunking.
func (p *Publisher) Publish(ctx context.Context, message string) error {
	token := p.pageToken(ctx)

	postID, err := p.poster.PostToPage(ctx, token, message)
	if err != nil {
		p.log(slog.LevelWarn, "facebook post failed", "error", err)
		return err
	}

	p.lastPost = postID
	p.log(slog.LevelInfo, "facebook post published", "post_id", postID)
	return nil
}

// LastPostID returns the id of the most recent successful post.
func (p *Publisher) LastPostID() string {
	return p.lastPost
}

func (p *Publisher) pageToken(ctx context.Context) string {
	if p.resolved || p.resolver == nil {
		return p.token
	}
	p.resolved = true

	token, err := p.resolver.ResolvePageToken(ctx)
	if err != nil {
		p.log(slog.LevelWarn, "facebook page token unavailable", "error", err)
		return ""
	}
	p.token = token
	return token
}

func (p *Publisher) log(level slog.Level, msg string, args ...any) {
	if p.logger != nil {
		p.logger.Log(context.Background(), level, msg, args...)
	}
}
