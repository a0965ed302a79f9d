package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/ports"
	"AffairsRelay/internal/scanner"
)

// ArticleExtractor pulls the headline and lead paragraph from featured article pages.
type ArticleExtractor struct {
	fetcher fetcher
	layout  scanner.Layout
	logger  *slog.Logger
}

var _ ports.ArticleExtractor = (*ArticleExtractor)(nil)

// NewArticleExtractor wires an HTTP client; a nil client gets a 10s timeout.
func NewArticleExtractor(layout scanner.Layout, client *http.Client, userAgent string, log *slog.Logger) *ArticleExtractor {
	return &ArticleExtractor{
		fetcher: newFetcher(client, userAgent),
		layout:  layout,
		logger:  log,
	}
}

// Extract never returns a partial article: it yields Success, Skip when the
// featured marker is absent, or Error for fetch and structure failures.
func (e *ArticleExtractor) Extract(ctx context.Context, articleURL string) domain.Extraction {
	doc, err := e.fetcher.fetchDocument(ctx, articleURL)
	if err != nil {
		return domain.Failed(fmt.Errorf("fetch article %s: %w", articleURL, err))
	}

	result := extractArticle(doc, e.layout, articleURL)
	if e.logger != nil {
		e.logger.Debug("article parsed", "url", articleURL, "outcome", result.Outcome.String())
	}
	return result
}

func extractArticle(doc *goquery.Document, layout scanner.Layout, articleURL string) domain.Extraction {
	marker := doc.Find(layout.FeaturedMarker).First()
	if marker.Length() == 0 {
		return domain.Skipped(domain.ErrFeaturedMarkerMissing.Error())
	}

	titleSel := doc.Find(layout.Title).First()
	if titleSel.Length() == 0 {
		return domain.Failed(fmt.Errorf("extract %s: %w", articleURL, domain.ErrTitleMissing))
	}

	para := nextElement(marker.Nodes[0], layout.ParagraphTag)
	if para == nil {
		return domain.Failed(fmt.Errorf("extract %s: %w", articleURL, domain.ErrParagraphMissing))
	}

	return domain.Extracted(domain.RawArticle{
		URL:       articleURL,
		Title:     cleanText(titleSel.Text()),
		Paragraph: cleanText(doc.FindNodes(para).Text()),
	})
}

// nextElement returns the first element named tag that follows start in
// document order, descending into start's own children first.
func nextElement(start *html.Node, tag string) *html.Node {
	for n := advance(start); n != nil; n = advance(n) {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
	}
	return nil
}

func advance(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}
