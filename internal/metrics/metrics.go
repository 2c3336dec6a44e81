package metrics

import (
	"log/slog"
	"sync"
	"time"
)

// Run collects counters for one digest generation. A nil *Run is valid and
// records nothing.
type Run struct {
	mu sync.Mutex

	// Collection
	FeedsLoaded    int
	FeedsFailed    int
	EntriesFetched int
	FetchFailures  int

	// Pipeline
	OutsideWindow      int
	DuplicatesFiltered int
	SummariesPrimary   int
	SummariesFallback  int
	SummariesSkipped   int

	// Output
	CoverItems    int
	SectionItems  int
	DroppedByCap  int
	ArchiveID     string
	StartedAt     time.Time
	ProcessingDur time.Duration
}

// NewRun starts a run clock.
func NewRun() *Run {
	return &Run{StartedAt: time.Now()}
}

// Add applies fn to the counters under the lock.
func (m *Run) Add(fn func(*Run)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

// Finish records the elapsed processing time.
func (m *Run) Finish() {
	m.Add(func(r *Run) {
		r.ProcessingDur = time.Since(r.StartedAt)
	})
}

// LogValue renders the counters as a slog group.
func (m *Run) LogValue() slog.Value {
	if m == nil {
		return slog.GroupValue()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slog.GroupValue(
		slog.Int("feeds_loaded", m.FeedsLoaded),
		slog.Int("feeds_failed", m.FeedsFailed),
		slog.Int("entries_fetched", m.EntriesFetched),
		slog.Int("fetch_failures", m.FetchFailures),
		slog.Int("outside_window", m.OutsideWindow),
		slog.Int("duplicates_filtered", m.DuplicatesFiltered),
		slog.Int("summaries_primary", m.SummariesPrimary),
		slog.Int("summaries_fallback", m.SummariesFallback),
		slog.Int("summaries_skipped", m.SummariesSkipped),
		slog.Int("cover_items", m.CoverItems),
		slog.Int("section_items", m.SectionItems),
		slog.Int("dropped_by_cap", m.DroppedByCap),
		slog.String("archive_id", m.ArchiveID),
		slog.Int64("processing_time_ms", m.ProcessingDur.Milliseconds()),
	)
}
