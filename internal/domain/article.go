package domain

import (
	"errors"
	"time"
)

// ProcessingStatus enumerates states persisted alongside a seen URL.
type ProcessingStatus string

const (
	StatusProcessed ProcessingStatus = "processed"
)

// SeenRecord is the durable dedup entry for one article URL.
type SeenRecord struct {
	URL       string
	ScrapedAt time.Time
	Status    ProcessingStatus
}

// RawArticle is the English content lifted from a featured article page.
type RawArticle struct {
	URL       string
	Title     string
	Paragraph string
}

var (
	ErrFeaturedMarkerMissing = errors.New("featured marker missing")
	ErrTitleMissing          = errors.New("title element missing")
	ErrParagraphMissing      = errors.New("paragraph after featured marker missing")
)

// ExtractionOutcome tags the result of a single article extraction.
type ExtractionOutcome int

const (
	OutcomeSuccess ExtractionOutcome = iota
	OutcomeSkip
	OutcomeError
)

func (o ExtractionOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkip:
		return "skip"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Extraction is Success(Article) | Skip(Reason) | Error(Err).
type Extraction struct {
	Outcome ExtractionOutcome
	Article RawArticle
	Reason  string
	Err     error
}

// Extracted wraps a successfully extracted article.
func Extracted(article RawArticle) Extraction {
	return Extraction{Outcome: OutcomeSuccess, Article: article}
}

// Skipped marks an article that does not satisfy the featured layout precondition.
func Skipped(reason string) Extraction {
	return Extraction{Outcome: OutcomeSkip, Reason: reason}
}

// Failed marks an article that could not be fetched or parsed.
func Failed(err error) Extraction {
	return Extraction{Outcome: OutcomeError, Err: err}
}

// BilingualArticle is one index of a BilingualBatch.
type BilingualArticle struct {
	OriginalTitle       string
	OriginalParagraph   string
	TranslatedTitle     string
	TranslatedParagraph string
}

// BilingualBatch keeps four index-aligned sequences. Entries are only added
// through Append so all four always share the same length.
type BilingualBatch struct {
	origTitles       []string
	origParagraphs   []string
	translTitles     []string
	translParagraphs []string
}

// Append adds one article to all four sequences.
func (b *BilingualBatch) Append(article BilingualArticle) {
	b.origTitles = append(b.origTitles, article.OriginalTitle)
	b.origParagraphs = append(b.origParagraphs, article.OriginalParagraph)
	b.translTitles = append(b.translTitles, article.TranslatedTitle)
	b.translParagraphs = append(b.translParagraphs, article.TranslatedParagraph)
}

// Len returns the number of aligned articles.
func (b BilingualBatch) Len() int {
	return len(b.origTitles)
}

// At returns the aligned entries at index i.
func (b BilingualBatch) At(i int) BilingualArticle {
	return BilingualArticle{
		OriginalTitle:       b.origTitles[i],
		OriginalParagraph:   b.origParagraphs[i],
		TranslatedTitle:     b.translTitles[i],
		TranslatedParagraph: b.translParagraphs[i],
	}
}

// Articles returns the batch as a slice of aligned records.
func (b BilingualBatch) Articles() []BilingualArticle {
	out := make([]BilingualArticle, 0, b.Len())
	for i := 0; i < b.Len(); i++ {
		out = append(out, b.At(i))
	}
	return out
}

// Sequences exposes copies of the four parallel slices.
func (b BilingualBatch) Sequences() (origTitles, origParagraphs, translatedTitles, translatedParagraphs []string) {
	return clone(b.origTitles), clone(b.origParagraphs), clone(b.translTitles), clone(b.translParagraphs)
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
