package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/scanner"
)

const featuredArticle = `
<html><body>
  <h1 id="list" style="text-align:center; font-size:20px;">
     RBI   keeps
     repo rate unchanged
  </h1>
  <p>Breadcrumb paragraph before the marker.</p>
  <div class="featured_image" style="margin-bottom:-5px;">
    <img src="/cover.jpg">
  </div>
  <div class="content">
    <p>The Reserve Bank   of India
       held the policy rate at 6.5%.</p>
    <p>Second paragraph.</p>
  </div>
</body></html>`

func mustDoc(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestExtractArticleSuccess(t *testing.T) {
	t.Parallel()

	res := extractArticle(mustDoc(t, featuredArticle), scanner.GKToday, "https://site.test/rbi/")
	if res.Outcome != domain.OutcomeSuccess {
		t.Fatalf("expected success, got %s (%v)", res.Outcome, res.Err)
	}
	if res.Article.Title != "RBI keeps repo rate unchanged" {
		t.Fatalf("unexpected title: %q", res.Article.Title)
	}
	if res.Article.Paragraph != "The Reserve Bank of India held the policy rate at 6.5%." {
		t.Fatalf("unexpected paragraph: %q", res.Article.Paragraph)
	}
	if res.Article.URL != "https://site.test/rbi/" {
		t.Fatalf("unexpected url: %s", res.Article.URL)
	}
}

func TestExtractArticleParagraphInsideMarker(t *testing.T) {
	t.Parallel()

	raw := `<h1 id="list" style="text-align:center; font-size:20px;">T</h1>
	<div class="featured_image" style="margin-bottom:-5px;"><p>caption</p></div><p>after</p>`
	res := extractArticle(mustDoc(t, raw), scanner.GKToday, "u")
	if res.Outcome != domain.OutcomeSuccess || res.Article.Paragraph != "caption" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExtractArticleSkipsWithoutMarker(t *testing.T) {
	t.Parallel()

	raw := strings.Replace(featuredArticle, `style="margin-bottom:-5px;"`, `style="margin:0"`, 1)
	res := extractArticle(mustDoc(t, raw), scanner.GKToday, "u")
	if res.Outcome != domain.OutcomeSkip {
		t.Fatalf("expected skip, got %s", res.Outcome)
	}
	if res.Err != nil {
		t.Fatalf("skip must not carry an error: %v", res.Err)
	}
}

func TestExtractArticleErrors(t *testing.T) {
	t.Parallel()

	noTitle := strings.Replace(featuredArticle, `id="list"`, `id="other"`, 1)
	res := extractArticle(mustDoc(t, noTitle), scanner.GKToday, "u")
	if res.Outcome != domain.OutcomeError || !errors.Is(res.Err, domain.ErrTitleMissing) {
		t.Fatalf("expected title error, got %+v", res)
	}

	noPara := `<h1 id="list" style="text-align:center; font-size:20px;">T</h1>
	<p>before</p><div class="featured_image" style="margin-bottom:-5px;"></div>`
	res = extractArticle(mustDoc(t, noPara), scanner.GKToday, "u")
	if res.Outcome != domain.OutcomeError || !errors.Is(res.Err, domain.ErrParagraphMissing) {
		t.Fatalf("expected paragraph error, got %+v", res)
	}
}

func TestArticleExtractorFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing/" {
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "relay-test" {
			http.Error(w, "bad agent "+ua, http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(featuredArticle))
	}))
	defer server.Close()

	ex := NewArticleExtractor(scanner.GKToday, server.Client(), "relay-test", nil)

	ok := ex.Extract(context.Background(), server.URL+"/rbi/")
	if ok.Outcome != domain.OutcomeSuccess {
		t.Fatalf("expected success, got %s: %v", ok.Outcome, ok.Err)
	}

	missing := ex.Extract(context.Background(), server.URL+"/missing/")
	if missing.Outcome != domain.OutcomeError || missing.Err == nil {
		t.Fatalf("expected fetch error, got %+v", missing)
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	if got := cleanText("  a\n\t b   c  "); got != "a b c" {
		t.Fatalf("unexpected clean text: %q", got)
	}
}
