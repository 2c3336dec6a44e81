// Package edition assembles a weekly digest from enriched items: it windows,
// deduplicates, classifies, scores, picks the cover and fills capped topic
// sections.
package edition

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/deusflow/weeklydigest/internal/classify"
	"github.com/deusflow/weeklydigest/internal/metrics"
	"github.com/deusflow/weeklydigest/internal/news"
	"github.com/deusflow/weeklydigest/internal/score"
	"github.com/deusflow/weeklydigest/internal/similarity"
)

const dateLayout = "2006-01-02"

// Options tunes the assembly.
type Options struct {
	// Window is how far back from now items are accepted.
	Window time.Duration
	// CoverSize is how many top-scored items go to the cover.
	CoverSize int
	// SectionCap is the maximum number of items per section.
	SectionCap int
	// DedupThreshold is the title similarity above which an item is a
	// duplicate of an already accepted, more recent one.
	DedupThreshold float64
}

// DefaultOptions returns a 7 day window, 5 cover items, 15 per section and
// a 0.9 dedup threshold.
func DefaultOptions() Options {
	return Options{
		Window:         7 * 24 * time.Hour,
		CoverSize:      5,
		SectionCap:     15,
		DedupThreshold: 0.9,
	}
}

// Week describes the edition's time window.
type Week struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	GeneratedUTC string `json:"generated_utc"`
}

// Edition is one generated digest.
type Edition struct {
	Week     Week                         `json:"week"`
	Top      []news.PublicItem            `json:"top"`
	Sections map[string][]news.PublicItem `json:"sections"`
}

// Assembler builds editions. It keeps no state between calls.
type Assembler struct {
	classifier *classify.Classifier
	scorer     *score.Scorer
	opts       Options
	log        *slog.Logger
}

// New returns an Assembler. Zero option fields take their defaults.
func New(c *classify.Classifier, s *score.Scorer, opts Options, log *slog.Logger) *Assembler {
	def := DefaultOptions()
	if opts.Window <= 0 {
		opts.Window = def.Window
	}
	if opts.CoverSize <= 0 {
		opts.CoverSize = def.CoverSize
	}
	if opts.SectionCap <= 0 {
		opts.SectionCap = def.SectionCap
	}
	if opts.DedupThreshold <= 0 {
		opts.DedupThreshold = def.DedupThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{classifier: c, scorer: s, opts: opts, log: log}
}

// Assemble runs the digest algorithm over items at time now. stats may be
// nil.
func (a *Assembler) Assemble(items []news.Item, now time.Time, stats *metrics.Run) Edition {
	now = now.UTC()

	fresh := a.window(items, now, stats)

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Published.After(fresh[j].Published)
	})

	accepted := a.dedup(fresh, stats)

	for i := range accepted {
		it := &accepted[i]
		it.Category = a.classifier.Classify(it.Title, it.Summary, it.Source)
		it.Score = a.scorer.Score(it.Published, it.Source, it.Title, it.Summary, now)
	}

	cover, rest := a.selectCover(accepted)
	sections := a.bucket(rest, stats)

	ed := Edition{
		Week: Week{
			Start:        now.Add(-a.opts.Window).Format(dateLayout),
			End:          now.Format(dateLayout),
			GeneratedUTC: now.Format(time.RFC3339),
		},
		Top:      publicItems(cover),
		Sections: make(map[string][]news.PublicItem, len(sections)),
	}
	sectionItems := 0
	for label, its := range sections {
		ed.Sections[label] = publicItems(its)
		sectionItems += len(its)
	}

	stats.Add(func(r *metrics.Run) {
		r.CoverItems = len(cover)
		r.SectionItems = sectionItems
	})
	a.log.Info("edition assembled",
		"candidates", len(items),
		"accepted", len(accepted),
		"cover", len(cover),
		"section_items", sectionItems,
	)
	return ed
}

// window keeps items with a title and link published no earlier than
// now-Window. Future-dated items are kept.
func (a *Assembler) window(items []news.Item, now time.Time, stats *metrics.Run) []news.Item {
	start := now.Add(-a.opts.Window)
	out := make([]news.Item, 0, len(items))
	dropped := 0
	for _, it := range items {
		if it.Title == "" || it.Link == "" {
			continue
		}
		if it.Published.Before(start) {
			dropped++
			continue
		}
		out = append(out, it)
	}
	stats.Add(func(r *metrics.Run) { r.OutsideWindow += dropped })
	return out
}

// dedup keeps an item unless its title is more similar than the threshold to
// a title accepted before it. Items must be sorted newest first so the most
// recent member of a duplicate cluster survives.
//
// Every candidate is compared with every accepted title, O(n^2) ratio calls.
// Weekly batches are a few hundred items at most.
func (a *Assembler) dedup(items []news.Item, stats *metrics.Run) []news.Item {
	accepted := make([]news.Item, 0, len(items))
	dups := 0
outer:
	for _, it := range items {
		for _, kept := range accepted {
			if similarity.Ratio(it.Title, kept.Title) > a.opts.DedupThreshold {
				a.log.Debug("near-duplicate dropped", "title", it.Title, "kept", kept.Title)
				dups++
				continue outer
			}
		}
		accepted = append(accepted, it)
	}
	stats.Add(func(r *metrics.Run) { r.DuplicatesFiltered += dups })
	return accepted
}

// selectCover relabels the CoverSize best scored items as cover and returns
// them, best first, along with the remaining items in input order.
func (a *Assembler) selectCover(items []news.Item) (cover, rest []news.Item) {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return items[order[i]].Score > items[order[j]].Score
	})

	coverLabel := a.classifier.Taxonomy().Cover()
	n := min(a.opts.CoverSize, len(items))
	isCover := make(map[int]bool, n)
	cover = make([]news.Item, 0, n)
	for _, idx := range order[:n] {
		it := items[idx]
		it.Category = coverLabel
		cover = append(cover, it)
		isCover[idx] = true
	}

	rest = make([]news.Item, 0, len(items)-n)
	for i, it := range items {
		if !isCover[i] {
			rest = append(rest, it)
		}
	}
	return cover, rest
}

// bucket groups items by category, sorts each section by score and caps it.
// Every taxonomy label is present, possibly empty.
func (a *Assembler) bucket(items []news.Item, stats *metrics.Run) map[string][]news.Item {
	sections := make(map[string][]news.Item)
	for _, label := range a.classifier.Taxonomy().Labels() {
		sections[label] = []news.Item{}
	}
	for _, it := range items {
		sections[it.Category] = append(sections[it.Category], it)
	}

	dropped := 0
	for label, its := range sections {
		sort.SliceStable(its, func(i, j int) bool {
			return its[i].Score > its[j].Score
		})
		if len(its) > a.opts.SectionCap {
			dropped += len(its) - a.opts.SectionCap
			its = its[:a.opts.SectionCap]
		}
		sections[label] = its
	}
	stats.Add(func(r *metrics.Run) { r.DroppedByCap += dropped })
	return sections
}

func publicItems(items []news.Item) []news.PublicItem {
	out := make([]news.PublicItem, len(items))
	for i, it := range items {
		out[i] = it.Public()
	}
	return out
}

// ArchiveID returns the ISO year-week key of t, e.g. "2024-W03".
func ArchiveID(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ArchiveFile returns the archive file name for id.
func ArchiveFile(id string) string {
	return id + ".json"
}

// Index lists archive files, newest first.
type Index struct {
	Files []string `json:"files"`
}

// NewIndex sorts files in descending lexical order, which for zero-padded
// year-week names is newest first.
func NewIndex(files []string) Index {
	sorted := append([]string(nil), files...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	if sorted == nil {
		sorted = []string{}
	}
	return Index{Files: sorted}
}
