package ports

import (
	"context"
	"time"

	"AffairsRelay/internal/domain"
)

// ArticleDiscoverer walks the paginated listing and returns candidate article URLs.
type ArticleDiscoverer interface {
	Discover(ctx context.Context, listingURL string) ([]string, error)
}

// SeenStore persists processed article URLs for deduplication.
type SeenStore interface {
	Seen(ctx context.Context, url string) (bool, error)
	Save(ctx context.Context, urls []string, scrapedAt time.Time) error
}

// ArticleExtractor fetches one article page and extracts its featured content.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) domain.Extraction
}

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Publisher delivers a fully rendered message to one destination.
type Publisher interface {
	Publish(ctx context.Context, message string) error
}
