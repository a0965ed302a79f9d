package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"AffairsRelay/internal/ports"
	"AffairsRelay/internal/scanner"
)

// ListingDiscoverer paginates a listing section and collects article URLs.
type ListingDiscoverer struct {
	fetcher  fetcher
	layout   scanner.Layout
	maxPages int
	logger   *slog.Logger
}

var _ ports.ArticleDiscoverer = (*ListingDiscoverer)(nil)

// DiscovererOptions tunes pagination; zero values fall back to defaults.
type DiscovererOptions struct {
	Client    *http.Client
	UserAgent string
	// MaxPages bounds pagination; 0 keeps walking until an empty page.
	MaxPages int
}

// NewListingDiscoverer wires an HTTP client with the site layout.
func NewListingDiscoverer(layout scanner.Layout, opts DiscovererOptions, log *slog.Logger) *ListingDiscoverer {
	return &ListingDiscoverer{
		fetcher:  newFetcher(opts.Client, opts.UserAgent),
		layout:   layout,
		maxPages: opts.MaxPages,
		logger:   log,
	}
}

// Discover walks page/1/, page/2/, ... and stops at the first page that
// yields no URLs. A page that cannot be fetched counts as empty.
func (d *ListingDiscoverer) Discover(ctx context.Context, listingURL string) ([]string, error) {
	if strings.TrimSpace(listingURL) == "" {
		return nil, fmt.Errorf("listing url is empty")
	}

	var all []string
	for page := 1; d.maxPages <= 0 || page <= d.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		pageURL := buildPageURL(listingURL, page)
		urls, err := d.pageURLs(ctx, pageURL)
		if err != nil {
			d.warn("listing page failed, stopping pagination", "page", page, "url", pageURL, "error", err)
			break
		}
		if len(urls) == 0 {
			d.debug("empty listing page, stopping pagination", "page", page)
			break
		}

		d.debug("listing page parsed", "page", page, "count", len(urls))
		all = append(all, urls...)
	}

	return all, nil
}

func (d *ListingDiscoverer) pageURLs(ctx context.Context, pageURL string) ([]string, error) {
	doc, err := d.fetcher.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	return extractListingURLs(doc, d.layout, base), nil
}

func extractListingURLs(doc *goquery.Document, layout scanner.Layout, base *url.URL) []string {
	var urls []string
	doc.Find(layout.ListingHeading).Each(func(_ int, heading *goquery.Selection) {
		href, ok := heading.Find("a").First().Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if resolved, err := base.Parse(href); err == nil {
			href = resolved.String()
		}
		urls = append(urls, href)
	})
	return urls
}

func buildPageURL(base string, page int) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%spage/%d/", base, page)
}

func (d *ListingDiscoverer) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *ListingDiscoverer) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
