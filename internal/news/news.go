// Package news holds the digest's item types and the per-entry enrichment
// step (markup cleanup and summarization).
package news

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/deusflow/weeklydigest/internal/textclean"
)

// MaxSummaryRunes caps the summary shown for an item.
const MaxSummaryRunes = 700

// Entry is a feed entry as collected for one run.
type Entry struct {
	Title     string
	Link      string
	Published time.Time
	// Source is the link host without a leading "www.".
	Source string
	// Description is the feed's summary, possibly HTML.
	Description string
	// ArticleText is the fetched article body. Empty when the fetch failed
	// or was skipped.
	ArticleText string
}

// Item is an entry that survived windowing and dedup, with its display
// summary, section and score.
type Item struct {
	Entry
	Summary  string
	Category string
	Score    float64
}

// PublicItem is the persisted shape of an item.
type PublicItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Source    string `json:"source"`
	Summary   string `json:"summary"`
	Category  string `json:"category"`
}

// Public reduces the item to its persisted fields.
func (it Item) Public() PublicItem {
	return PublicItem{
		Title:     it.Title,
		Link:      it.Link,
		Published: it.Published.Format(time.RFC3339),
		Source:    it.Source,
		Summary:   it.Summary,
		Category:  it.Category,
	}
}

// SourceFromLink returns the lower-cased host of link without "www.".
// Unparseable links give "".
func SourceFromLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Summarizer is what the enricher needs from a summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, text string, n int) string
}

// Enricher turns entries into items ready for classification and scoring.
type Enricher struct {
	summarizer Summarizer
	sentences  int
}

// NewEnricher returns an Enricher asking s for summaries of the given length.
func NewEnricher(s Summarizer, sentences int) *Enricher {
	return &Enricher{summarizer: s, sentences: sentences}
}

// Enrich cleans the entry's description and builds its display summary.
// The summarizer reads the article text, or the cleaned description when
// there is no article text; when it declines (text too short), the cleaned
// description is shown instead. A zero Published time becomes now.
func (e *Enricher) Enrich(ctx context.Context, entry Entry, now time.Time) Item {
	entry.Title = strings.TrimSpace(entry.Title)
	if entry.Published.IsZero() {
		entry.Published = now
	}
	if entry.Source == "" {
		entry.Source = SourceFromLink(entry.Link)
	}

	plain := textclean.Clean(entry.Description)
	body := entry.ArticleText
	if strings.TrimSpace(body) == "" {
		body = plain
	}

	summary := e.summarizer.Summarize(ctx, body, e.sentences)
	if summary == "" {
		summary = plain
	}

	return Item{
		Entry:   entry,
		Summary: TruncateRunes(summary, MaxSummaryRunes),
	}
}

// EnrichAll enriches every entry in order.
func (e *Enricher) EnrichAll(ctx context.Context, entries []Entry, now time.Time) []Item {
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, e.Enrich(ctx, entry, now))
	}
	return items
}
