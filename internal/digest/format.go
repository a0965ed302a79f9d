package digest

import (
	"fmt"
	"html"
	"strings"
	"time"

	"AffairsRelay/internal/domain"
)

const (
	ellipsis         = "..."
	articleSeparator = "\n\n"
)

// Dialect is the markup vocabulary of one channel.
type Dialect struct {
	Name        string
	BoldOpen    string
	BoldClose   string
	ItalicOpen  string
	ItalicClose string
	// Flags prefixes language labels with their flag emoji.
	Flags bool
	// Escape protects article text from being read as markup.
	Escape func(string) string
}

// HTML renders Telegram's HTML parse mode.
var HTML = Dialect{
	Name:        "html",
	BoldOpen:    "<b>",
	BoldClose:   "</b>",
	ItalicOpen:  "<i>",
	ItalicClose: "</i>",
	Flags:       true,
	Escape:      html.EscapeString,
}

// Plain renders text without any markup.
var Plain = Dialect{Name: "plain"}

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case HTML.Name:
		return HTML, nil
	case Plain.Name:
		return Plain, nil
	default:
		return Dialect{}, fmt.Errorf("unknown dialect %q", name)
	}
}

func (d Dialect) bold(s string) string   { return d.BoldOpen + s + d.BoldClose }
func (d Dialect) italic(s string) string { return d.ItalicOpen + s + d.ItalicClose }

func (d Dialect) flag(f string) string {
	if !d.Flags || f == "" {
		return ""
	}
	return f + " "
}

func (d Dialect) escape(s string) string {
	if d.Escape == nil {
		return s
	}
	return d.Escape(s)
}

// Labels configures the text shared by every channel.
type Labels struct {
	Title          string
	DateLayout     string
	SourceName     string
	TargetName     string
	SourceFlag     string
	TargetFlag     string
	Promo          string
	ParagraphLimit int
	Markers        []string
}

// Formatter renders a bilingual batch into channel messages.
type Formatter struct {
	labels Labels
}

// NewFormatter fills unset labels with defaults.
func NewFormatter(labels Labels) *Formatter {
	if labels.ParagraphLimit <= 0 {
		labels.ParagraphLimit = 400
	}
	if labels.DateLayout == "" {
		labels.DateLayout = "02-Jan-2006"
	}
	if labels.Markers == nil {
		labels.Markers = DefaultMarkers
	}
	return &Formatter{labels: labels}
}

// Article renders one aligned entry.
func (f *Formatter) Article(a domain.BilingualArticle, d Dialect) string {
	l := f.labels
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s\n",
		Marker(a.OriginalTitle, l.Markers), d.bold(l.SourceName+" Title:"), d.escape(a.OriginalTitle))
	fmt.Fprintf(&b, "%s %s\n\n",
		d.bold(d.flag(l.TargetFlag)+l.TargetName+" Title:"), d.escape(a.TranslatedTitle))
	fmt.Fprintf(&b, "%s%s\n%s%s\n\n",
		d.flag(l.SourceFlag), d.italic(l.SourceName+" Content:"), d.escape(Truncate(a.OriginalParagraph, l.ParagraphLimit)), ellipsis)
	fmt.Fprintf(&b, "%s%s\n%s%s\n\n",
		d.flag(l.TargetFlag), d.italic(l.TargetName+" Content:"), d.escape(Truncate(a.TranslatedParagraph, l.ParagraphLimit)), ellipsis)

	return b.String()
}

// Body joins every article of the batch.
func (f *Formatter) Body(batch domain.BilingualBatch, d Dialect) string {
	parts := make([]string, 0, batch.Len())
	for _, a := range batch.Articles() {
		parts = append(parts, f.Article(a, d))
	}
	return strings.Join(parts, articleSeparator)
}

// Header carries the run date and article count.
func (f *Formatter) Header(now time.Time, count int) string {
	return fmt.Sprintf("🗓️ %s - %s\n📊 Total New Articles: %d\n\n", f.labels.Title, now.Format(f.labels.DateLayout), count)
}

// Compose renders header, article bodies and promo footer.
func (f *Formatter) Compose(batch domain.BilingualBatch, d Dialect, now time.Time) string {
	return f.Header(now, batch.Len()) + f.Body(batch, d) + articleSeparator + f.labels.Promo
}

// Truncate keeps the first limit characters (runes) of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
