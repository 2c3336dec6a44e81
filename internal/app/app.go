// Package app wires collectors, the digest pipeline and storage into one run.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deusflow/weeklydigest/internal/classify"
	"github.com/deusflow/weeklydigest/internal/config"
	"github.com/deusflow/weeklydigest/internal/edition"
	"github.com/deusflow/weeklydigest/internal/gemini"
	"github.com/deusflow/weeklydigest/internal/metrics"
	"github.com/deusflow/weeklydigest/internal/news"
	"github.com/deusflow/weeklydigest/internal/ratelimit"
	"github.com/deusflow/weeklydigest/internal/retry"
	"github.com/deusflow/weeklydigest/internal/rss"
	"github.com/deusflow/weeklydigest/internal/score"
	"github.com/deusflow/weeklydigest/internal/scraper"
	"github.com/deusflow/weeklydigest/internal/storage"
	"github.com/deusflow/weeklydigest/internal/summarize"
)

// Run generates one edition and publishes it to store. The returned stats
// are filled in even when Run fails part way.
func Run(ctx context.Context, cfg *config.Config, store storage.Store, log *slog.Logger) (*metrics.Run, error) {
	if log == nil {
		log = slog.Default()
	}
	stats := metrics.NewRun()

	feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return stats, fmt.Errorf("load feeds: %w", err)
	}
	stats.Add(func(r *metrics.Run) { r.FeedsLoaded = len(feeds) })

	res := rss.NewFetcher(cfg.RequestTimeout, log).FetchAll(ctx, feeds)
	stats.Add(func(r *metrics.Run) { r.FeedsFailed = res.Failed })
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	now := time.Now().UTC()
	entries := rss.ToEntries(res.Items, now)
	stats.Add(func(r *metrics.Run) { r.EntriesFetched = len(entries) })
	log.Info("entries collected", "entries", len(entries))

	// Stale entries skip article fetching and summarizing; the assembler
	// still sees them so they are counted as outside the window.
	fresh, stale := splitByWindow(entries, now.Add(-cfg.Window))

	if cfg.FetchArticles {
		fetchArticles(ctx, cfg, fresh, stats, log)
	}

	sum, closeSum, err := newSummarizer(ctx, cfg, stats, log)
	if err != nil {
		return stats, err
	}
	defer closeSum()

	items := news.NewEnricher(sum, cfg.SummarySentences).EnrichAll(ctx, fresh, now)
	for _, e := range stale {
		items = append(items, news.Item{Entry: e})
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	assembler := edition.New(
		classify.New(cfg.Rules.Taxonomy),
		score.New(cfg.Rules.Scoring),
		edition.Options{
			Window:         cfg.Window,
			CoverSize:      cfg.CoverSize,
			SectionCap:     cfg.SectionCap,
			DedupThreshold: cfg.DedupThreshold,
		},
		log,
	)
	ed := assembler.Assemble(items, now, stats)

	idx, err := storage.Publish(ctx, store, ed, now)
	if err != nil {
		return stats, fmt.Errorf("publish edition: %w", err)
	}
	stats.Add(func(r *metrics.Run) { r.ArchiveID = edition.ArchiveID(now) })
	stats.Finish()

	log.Info("edition published", "archive_entries", len(idx.Files), "stats", stats)
	return stats, nil
}

func splitByWindow(entries []news.Entry, start time.Time) (fresh, stale []news.Entry) {
	for _, e := range entries {
		if e.Published.Before(start) {
			stale = append(stale, e)
			continue
		}
		fresh = append(fresh, e)
	}
	return fresh, stale
}

// fetchArticles fills ArticleText for entries whose page could be fetched.
// Each distinct link is requested once, and texts cached at
// cfg.ArticleCachePath by earlier runs are not requested again.
func fetchArticles(ctx context.Context, cfg *config.Config, entries []news.Entry, stats *metrics.Run, log *slog.Logger) {
	client := scraper.New(cfg.RequestTimeout, cfg.ArticleCacheTTL, log)
	defer client.Close()

	if cfg.ArticleCachePath != "" {
		if err := client.LoadCache(cfg.ArticleCachePath); err != nil {
			log.Warn("article cache not loaded", "path", cfg.ArticleCachePath, "error", err)
		}
	}

	seen := make(map[string]bool, len(entries))
	var links []string
	for _, e := range entries {
		if !seen[e.Link] {
			seen[e.Link] = true
			links = append(links, e.Link)
		}
	}

	texts := client.FetchAll(ctx, links, cfg.ScrapeConcurrency)
	for i := range entries {
		entries[i].ArticleText = texts[entries[i].Link]
	}
	stats.Add(func(r *metrics.Run) { r.FetchFailures = client.Failures() })

	if cfg.ArticleCachePath != "" {
		if err := client.SaveCache(cfg.ArticleCachePath); err != nil {
			log.Warn("article cache not saved", "path", cfg.ArticleCachePath, "error", err)
		}
	}
}

// newSummarizer builds the summarizer selected by cfg.SummaryEngine. With
// Gemini, TextRank stays behind it for when the budget runs out or a
// request fails.
func newSummarizer(ctx context.Context, cfg *config.Config, stats *metrics.Run, log *slog.Logger) (*summarize.Summarizer, func(), error) {
	opts := []summarize.Option{
		summarize.WithLanguage(cfg.SummaryLanguage),
		summarize.WithLogger(log),
		summarize.WithTierHook(func(t summarize.Tier) {
			stats.Add(func(r *metrics.Run) {
				switch t {
				case summarize.TierPrimary:
					r.SummariesPrimary++
				case summarize.TierFallback:
					r.SummariesFallback++
				case summarize.TierSkipped:
					r.SummariesSkipped++
				}
			})
		}),
	}

	if cfg.SummaryEngine != config.EngineGemini {
		return summarize.New(opts...), func() {}, nil
	}

	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	limiter := ratelimit.New("gemini", cfg.MaxGeminiRequests)
	engine := gemini.NewEngine(client, limiter, retry.Config{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	}, log)

	opts = append(opts, summarize.WithEngine(summarize.Chain{engine, summarize.NewTextRank()}))
	closeFn := func() {
		s := limiter.Stats()
		log.Info("gemini usage", "used", s.Used, "max", s.Max, "refused", s.Refused)
		if err := client.Close(); err != nil {
			log.Warn("closing gemini client", "error", err)
		}
	}
	return summarize.New(opts...), closeFn, nil
}
